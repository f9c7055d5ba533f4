package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	repo "github.com/kenfuse/kenfuse-api/internal/domain/repository"
	"github.com/kenfuse/kenfuse-api/pkg/document"
	"github.com/kenfuse/kenfuse-api/pkg/helpers"
)

type WillService struct {
	Wills  repo.WillRepository
	Users  repo.UserRepository
	Store  ObjectStore
	Logger *logrus.Logger
	Now    func() time.Time
}

func NewWillService(wills repo.WillRepository, users repo.UserRepository, store ObjectStore, logger *logrus.Logger) *WillService {
	return &WillService{Wills: wills, Users: users, Store: store, Logger: logger, Now: time.Now}
}

type WillInput struct {
	Title         *string
	Content       *string
	Status        *entity.WillStatus
	Witnesses     json.RawMessage
	Beneficiaries json.RawMessage
	Assets        json.RawMessage
}

// validBeneficiaries accepts a non-empty JSON array.
func validBeneficiaries(raw json.RawMessage) error {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
		return invalid("beneficiaries must be a non-empty list")
	}
	return nil
}

// optionalJSON treats an absent or null document as unset.
func optionalJSON(raw json.RawMessage) json.RawMessage {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 || bytes.Equal(t, []byte("null")) {
		return nil
	}
	return t
}

func (s *WillService) Create(ctx context.Context, userID string, in WillInput) (*entity.Will, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" || in.Content == nil || strings.TrimSpace(*in.Content) == "" {
		return nil, invalid("title, content and beneficiaries are required")
	}
	if err := validBeneficiaries(in.Beneficiaries); err != nil {
		return nil, err
	}
	plan, err := currentPlan(ctx, s.Users, userID, nowOr(s.Now))
	if err != nil {
		return nil, err
	}
	count, err := s.Wills.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := checkQuota(plan, plan.MaxWills(), count, "will"); err != nil {
		return nil, err
	}

	w := &entity.Will{
		UserID:        userID,
		Title:         strings.TrimSpace(*in.Title),
		Content:       *in.Content,
		Status:        entity.WillDraft,
		Witnesses:     optionalJSON(in.Witnesses),
		Beneficiaries: in.Beneficiaries,
		Assets:        optionalJSON(in.Assets),
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, invalid("invalid status %q", *in.Status)
		}
		w.Status = *in.Status
	}
	if err := s.Wills.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *WillService) List(ctx context.Context, userID string) ([]entity.Will, error) {
	return s.Wills.ListByUser(ctx, userID)
}

func (s *WillService) Get(ctx context.Context, userID, id string) (*entity.Will, error) {
	w, err := s.Wills.GetForUser(ctx, id, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrWillNotFound
	}
	return w, err
}

func (s *WillService) Update(ctx context.Context, userID, id string, in WillInput) (*entity.Will, error) {
	w, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, invalid("title cannot be empty")
		}
		w.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		w.Content = *in.Content
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, invalid("invalid status %q", *in.Status)
		}
		w.Status = *in.Status
	}
	if in.Beneficiaries != nil {
		if err := validBeneficiaries(in.Beneficiaries); err != nil {
			return nil, err
		}
		w.Beneficiaries = in.Beneficiaries
	}
	if in.Witnesses != nil {
		w.Witnesses = optionalJSON(in.Witnesses)
	}
	if in.Assets != nil {
		w.Assets = optionalJSON(in.Assets)
	}
	if err := s.Wills.Update(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Sign records a digital signature and completes the will.
func (s *WillService) Sign(ctx context.Context, userID, id string) (*entity.Will, error) {
	w, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if w.Status == entity.WillArchived {
		return nil, newErr(ErrConflict, "an archived will cannot be signed")
	}
	now := nowOr(s.Now).UTC()
	w.IsDigitalSignature = true
	w.SignedAt = &now
	if w.Status == entity.WillDraft {
		w.Status = entity.WillCompleted
	}
	if err := s.Wills.Update(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// ExportPDF renders the will. When object storage is configured the file is
// also uploaded and its URL stored on the will.
func (s *WillService) ExportPDF(ctx context.Context, userID, id string) (*entity.Will, []byte, error) {
	w, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	owner, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	doc := document.WillDocument{
		Title:       w.Title,
		OwnerName:   owner.FullName(),
		Content:     w.Content,
		Status:      string(w.Status),
		SignedAt:    w.SignedAt,
		GeneratedAt: nowOr(s.Now),
	}
	for _, b := range w.BeneficiaryList() {
		doc.Beneficiaries = append(doc.Beneficiaries, document.WillBeneficiary{Name: b.Name, Relationship: b.Relationship})
	}
	pdf, err := document.RenderWill(doc)
	if err != nil {
		return nil, nil, err
	}

	if s.Store != nil {
		objectPath := fmt.Sprintf("wills/%s/will_%s.pdf", userID, w.ID)
		url, upErr := s.Store.Upload(ctx, objectPath, "application/pdf", bytes.NewReader(pdf))
		if upErr != nil {
			helpers.LogWarn(s.Logger, "upload will pdf failed", upErr, logrus.Fields{"will_id": w.ID})
		} else if url != w.PDFURL {
			w.PDFURL = url
			if err := s.Wills.Update(ctx, w); err != nil {
				return nil, nil, err
			}
		}
	}
	return w, pdf, nil
}

func (s *WillService) Delete(ctx context.Context, userID, id string) error {
	w, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.Wills.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrWillNotFound
		}
		return err
	}
	if s.Store != nil && w.PDFURL != "" {
		if err := s.Store.Delete(ctx, w.PDFURL); err != nil {
			helpers.LogWarn(s.Logger, "delete will pdf failed", err, logrus.Fields{"will_id": w.ID})
		}
	}
	return nil
}
