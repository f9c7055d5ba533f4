package entity

// Plan is a subscription tier.
type Plan string

const (
	PlanFree     Plan = "free"
	PlanStandard Plan = "standard"
	PlanPremium  Plan = "premium"
)

// Unlimited marks a quota without an upper bound.
const Unlimited = -1

func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanStandard, PlanPremium:
		return true
	}
	return false
}

// MaxWills returns how many wills the plan allows.
func (p Plan) MaxWills() int {
	if p == PlanFree {
		return 1
	}
	return Unlimited
}

// MaxMemorials returns how many memorials the plan allows.
func (p Plan) MaxMemorials() int {
	switch p {
	case PlanFree:
		return 1
	case PlanStandard:
		return 5
	}
	return Unlimited
}

// CanFundraise reports whether the plan may open fundraisers.
func (p Plan) CanFundraise() bool {
	return p == PlanStandard || p == PlanPremium
}
