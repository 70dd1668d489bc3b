package analyzer

import (
	"context"
	"strings"

	"github.com/rankscore/aeo-insight/internal/pageinsight"
	"github.com/rankscore/aeo-insight/internal/platform/errs"
	"github.com/rankscore/aeo-insight/internal/platform/requestid"
)

// LiteRequest is a visitor asking for quick tips without a full report.
type LiteRequest struct {
	Email string
	Name  string
	URL   string
}

// Lite records the visitor as a lead, then asks the tip generator for quick
// wins. The lead is captured even when no tip generator is configured. A
// failed subscription is logged and otherwise ignored.
func (s *Service) Lite(ctx context.Context, req LiteRequest) (string, error) {
	email := strings.TrimSpace(req.Email)
	target := strings.TrimSpace(req.URL)
	if email == "" || target == "" {
		return "", &errs.AppError{Kind: errs.InvalidInput, Message: "Missing email or URL"}
	}
	if err := pageinsight.ValidateURL(target); err != nil {
		return "", err
	}

	logger := s.logger.With("url", target, requestid.Attr(ctx))

	var captured bool
	if s.leads != nil {
		if err := s.leads.Subscribe(ctx, email, strings.TrimSpace(req.Name), target); err != nil {
			logger.Warn("lead capture failed", "error", err)
		} else {
			captured = true
		}
	}

	if s.tips == nil {
		return "", &errs.AppError{Kind: errs.Unavailable, Message: "Quick tips are not enabled on this server."}
	}

	tips, err := s.tips.Generate(ctx, target)
	if err != nil {
		logger.Error("tip generation failed", "error", err)
		return "", &errs.AppError{
			Kind:    errs.Unreachable,
			Message: "Failed to generate tips. Please try again later.",
			Cause:   err,
		}
	}

	logger.Info("lite tips generated", "lead_captured", captured)
	return tips, nil
}
