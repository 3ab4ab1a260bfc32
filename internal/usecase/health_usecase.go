package usecase

import "context"

// HealthCheck pings one dependency; nil means healthy
type HealthCheck func(ctx context.Context) error

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

type healthUsecase struct {
	checks map[string]HealthCheck
}

// NewHealthUsecase takes the optional dependency checks by name (nil entries are reported as "disabled")
func NewHealthUsecase(checks map[string]HealthCheck) HealthUsecase {
	return &healthUsecase{checks: checks}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	out := map[string]string{
		"status": "ok",
	}
	for name, check := range u.checks {
		switch {
		case check == nil:
			out[name] = "disabled"
		case check(ctx) != nil:
			out[name] = "down"
			out["status"] = "degraded"
		default:
			out[name] = "ok"
		}
	}
	return out
}
