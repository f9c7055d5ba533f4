package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
)

func optTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func optString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func date(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(entity.DateLayout)
}

func presentUser(u *entity.User) gin.H {
	return gin.H{
		"id":                u.ID,
		"email":             u.Email,
		"phone":             u.Phone,
		"first_name":        u.FirstName,
		"last_name":         u.LastName,
		"role":              u.Role,
		"subscription_plan": u.SubscriptionPlan,
		"is_verified":       u.IsVerified,
		"created_at":        u.CreatedAt,
	}
}

// presentUserAdmin adds the account state admins manage.
func presentUserAdmin(u *entity.User) gin.H {
	h := presentUser(u)
	h["is_active"] = u.IsActive
	h["subscription_expiry"] = optTime(u.SubscriptionExpiry)
	h["updated_at"] = u.UpdatedAt
	return h
}

func presentWill(w *entity.Will) gin.H {
	return gin.H{
		"id":                   w.ID,
		"user_id":              w.UserID,
		"title":                w.Title,
		"content":              w.Content,
		"status":               w.Status,
		"witnesses":            w.Witnesses,
		"beneficiaries":        w.Beneficiaries,
		"assets":               w.Assets,
		"pdf_url":              optString(w.PDFURL),
		"is_digital_signature": w.IsDigitalSignature,
		"signed_at":            optTime(w.SignedAt),
		"created_at":           w.CreatedAt,
		"updated_at":           w.UpdatedAt,
	}
}

func presentMemorial(m *entity.Memorial) gin.H {
	return gin.H{
		"id":              m.ID,
		"user_id":         m.UserID,
		"deceased_name":   m.DeceasedName,
		"date_of_birth":   date(m.DateOfBirth),
		"date_of_passing": date(m.DateOfPassing),
		"biography":       m.Biography,
		"photo_url":       optString(m.PhotoURL),
		"visibility":      m.Visibility,
		"location":        m.Location,
		"obituary":        m.Obituary,
		"funeral_details": m.FuneralDetails,
		"is_featured":     m.IsFeatured,
		"created_at":      m.CreatedAt,
		"updated_at":      m.UpdatedAt,
	}
}

func presentTribute(t *entity.Tribute) gin.H {
	return gin.H{
		"id":           t.ID,
		"memorial_id":  t.MemorialID,
		"message":      t.Message,
		"author_name":  t.AuthorName,
		"relationship": t.Relationship,
		"is_anonymous": t.IsAnonymous,
		"created_at":   t.CreatedAt,
	}
}

func presentMedia(m *entity.MemorialMedia) gin.H {
	h := gin.H{
		"id":          m.ID,
		"memorial_id": m.MemorialID,
		"type":        m.Kind,
		"url":         m.URL,
		"caption":     m.Caption,
		"uploaded_by": m.UploadedBy,
		"created_at":  m.CreatedAt,
	}
	// Older clients read photo_url/video_url.
	h[string(m.Kind)+"_url"] = m.URL
	return h
}

func presentFundraiser(f *entity.Fundraiser) gin.H {
	return gin.H{
		"id":                  f.ID,
		"user_id":             f.UserID,
		"memorial_id":         optString(f.MemorialID),
		"title":               f.Title,
		"description":         f.Description,
		"target_amount":       f.TargetAmount,
		"current_amount":      f.CurrentAmount,
		"currency":            f.Currency,
		"status":              f.Status,
		"cover_image":         optString(f.CoverImage),
		"end_date":            f.EndDate,
		"is_verified":         f.IsVerified,
		"progress_percentage": f.ProgressPercentage(),
		"created_at":          f.CreatedAt,
		"updated_at":          f.UpdatedAt,
	}
}

// presentDonation hides the donor's identity on anonymous donations.
func presentDonation(d *entity.Donation) gin.H {
	h := gin.H{
		"id":             d.ID,
		"fundraiser_id":  d.FundraiserID,
		"amount":         d.Amount,
		"currency":       d.Currency,
		"payment_method": d.PaymentMethod,
		"transaction_id": d.TransactionID,
		"donor_name":     d.DonorName,
		"donor_email":    optString(d.DonorEmail),
		"message":        d.Message,
		"is_anonymous":   d.IsAnonymous,
		"created_at":     d.CreatedAt,
	}
	if d.IsAnonymous {
		h["donor_name"] = "Anonymous"
		h["donor_email"] = nil
	}
	return h
}

func presentPayment(p *entity.Payment) gin.H {
	return gin.H{
		"id":                    p.ID,
		"amount":                p.Amount,
		"currency":              p.Currency,
		"payment_method":        p.Method,
		"status":                p.Status,
		"transaction_id":        optString(p.TransactionID),
		"mpesa_receipt":         optString(p.MpesaReceipt),
		"stripe_payment_intent": optString(p.StripePaymentIntent),
		"description":           p.Description,
		"payment_metadata":      p.Metadata,
		"created_at":            p.CreatedAt,
		"updated_at":            p.UpdatedAt,
	}
}

func presentVendor(v *entity.VendorProfile) gin.H {
	return gin.H{
		"id":                    v.ID,
		"user_id":               v.UserID,
		"business_name":         v.BusinessName,
		"business_registration": v.BusinessRegistration,
		"category":              v.Category,
		"description":           v.Description,
		"years_in_operation":    v.YearsInOperation,
		"county":                v.County,
		"town":                  v.Town,
		"address":               v.Address,
		"phone":                 v.Phone,
		"email":                 v.Email,
		"website":               v.Website,
		"logo_url":              optString(v.LogoURL),
		"cover_image":           optString(v.CoverImage),
		"status":                v.Status,
		"is_featured":           v.IsFeatured,
		"rating":                v.Rating,
		"review_count":          v.ReviewCount,
		"commission_rate":       v.CommissionRate,
		"created_at":            v.CreatedAt,
	}
}

func presentService(s *entity.VendorService) gin.H {
	return gin.H{
		"id":           s.ID,
		"vendor_id":    s.VendorID,
		"name":         s.Name,
		"description":  s.Description,
		"price":        s.Price,
		"currency":     s.Currency,
		"duration":     s.Duration,
		"is_available": s.IsAvailable,
		"created_at":   s.CreatedAt,
	}
}

func presentBooking(b *entity.VendorBooking) gin.H {
	return gin.H{
		"id":           b.ID,
		"vendor_id":    b.VendorID,
		"user_id":      b.UserID,
		"service_id":   b.ServiceID,
		"booking_date": b.BookingDate,
		"amount":       b.Amount,
		"commission":   b.Commission,
		"status":       b.Status,
		"notes":        b.Notes,
		"created_at":   b.CreatedAt,
		"updated_at":   b.UpdatedAt,
	}
}

func presentReview(r *entity.VendorReview) gin.H {
	return gin.H{
		"id":         r.ID,
		"vendor_id":  r.VendorID,
		"user_id":    r.UserID,
		"rating":     r.Rating,
		"comment":    r.Comment,
		"created_at": r.CreatedAt,
	}
}

func presentStats(s *entity.DashboardStats) gin.H {
	return gin.H{
		"users_by_role":         s.UsersByRole,
		"wills":                 s.Wills,
		"memorials":             s.Memorials,
		"fundraisers_by_status": s.FundraisersByStatus,
		"donations_total":       s.DonationsTotal,
		"donations_count":       s.DonationsCount,
		"vendors_by_status":     s.VendorsByStatus,
		"payments_by_status":    s.PaymentsByStatus,
		"bookings_by_status":    s.BookingsByStatus,
	}
}

// presentAll maps a slice with one of the present* functions.
func presentAll[T any](items []T, fn func(*T) gin.H) []gin.H {
	out := make([]gin.H, 0, len(items))
	for i := range items {
		out = append(out, fn(&items[i]))
	}
	return out
}
