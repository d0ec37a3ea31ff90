package service

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"catalog-backend/internal/domains/attribute"
	"catalog-backend/internal/domains/hierarchy"
	"catalog-backend/internal/shared/metrics"
	"catalog-backend/internal/shared/utils"
	"catalog-backend/pkg/logger"
)

const optionsAssociation = "attribute_options"

type attributeService struct {
	repo attribute.Repository
}

func NewAttributeService(repo attribute.Repository) attribute.Service {
	return &attributeService{repo: repo}
}

func (s *attributeService) CreateAttribute(ctx context.Context, req attribute.CreateAttributeReq) (*attribute.AttributeResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	a := attribute.NewAttribute(req.Name, req.InputType)

	exists, err := s.repo.AttributeSlugExists(ctx, a.Slug)
	if err != nil {
		return nil, wrap("check attribute slug", err)
	}
	if exists {
		return nil, attribute.NewDuplicateSlug(a.Slug)
	}
	if err := s.repo.CreateAttribute(ctx, a); err != nil {
		return nil, wrap("create attribute", err)
	}
	resp := attribute.ToAttributeResp(a)
	return &resp, nil
}

func (s *attributeService) GetAttribute(ctx context.Context, id uuid.UUID) (*attribute.AttributeResp, error) {
	a, err := s.repo.GetAttribute(ctx, id)
	if err != nil {
		return nil, wrap("get attribute", err)
	}
	resp := attribute.ToAttributeResp(a)
	return &resp, nil
}

func (s *attributeService) ListAttributes(ctx context.Context, limit, offset int) (*attribute.AttributeListResp, error) {
	limit, offset = utils.NormalizePage(limit, offset)
	attrs, total, err := s.repo.ListAttributes(ctx, limit, offset)
	if err != nil {
		return nil, wrap("list attributes", err)
	}
	out := make([]attribute.AttributeResp, len(attrs))
	for i := range attrs {
		out[i] = attribute.ToAttributeResp(&attrs[i])
	}
	return &attribute.AttributeListResp{Attributes: out, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *attributeService) CreateOption(ctx context.Context, req attribute.CreateOptionReq) (*attribute.OptionResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	o := attribute.NewOption(req.Value, req.Label, req.SortOrder)
	if err := s.repo.CreateOption(ctx, o); err != nil {
		return nil, wrap("create option", err)
	}
	resp := attribute.ToOptionResp(o)
	return &resp, nil
}

func (s *attributeService) ListOptions(ctx context.Context, search string, limit, offset int) (*attribute.OptionListResp, error) {
	limit, offset = utils.NormalizePage(limit, offset)
	opts, total, err := s.repo.ListOptions(ctx, search, limit, offset)
	if err != nil {
		return nil, wrap("list options", err)
	}
	return &attribute.OptionListResp{
		Options: attribute.ToOptionResps(opts),
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}, nil
}

func (s *attributeService) SetAttributeOptions(ctx context.Context, id uuid.UUID, req attribute.SetOptionsReq) (*attribute.SetOptionsResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a, err := s.repo.GetAttribute(ctx, id)
	if err != nil {
		return nil, wrap("get attribute", err)
	}
	if !a.InputType.HasOptions() && len(req.OptionIDs) > 0 {
		return nil, attribute.ErrOptionsDisabled
	}

	desired := hierarchy.NewIDSet(req.OptionIDs...)
	resolver := hierarchy.ResolverFunc(s.repo.ExistingOptionIDs)

	var applied hierarchy.Result
	err = s.repo.ReconcileOptionLinks(ctx, id, func(ctx context.Context, current hierarchy.IDSet) (hierarchy.Result, error) {
		result, err := hierarchy.Reconcile(ctx, current, desired, resolver)
		if err != nil {
			return result, err
		}
		if ue, ok := hierarchy.AsUnresolved(result.Err()); ok {
			return result, attribute.NewUnresolvedOptions(ue)
		}
		applied = result
		return result, nil
	})
	if err != nil {
		metrics.ObserveReconcile(optionsAssociation, outcomeOf(err), 0, 0)
		return nil, wrap("set attribute options", err)
	}

	outcome := metrics.OutcomeApplied
	if applied.IsNoop() {
		outcome = metrics.OutcomeNoop
	}
	metrics.ObserveReconcile(optionsAssociation, outcome, applied.ToAdd.Len(), applied.ToRemove.Len())
	logger.Info("attribute options reconciled", map[string]interface{}{
		"attribute_id": id.String(),
		"added":        applied.ToAdd.Len(),
		"removed":      applied.ToRemove.Len(),
	})

	updated, err := s.repo.GetAttribute(ctx, id)
	if err != nil {
		return nil, wrap("get attribute", err)
	}
	return &attribute.SetOptionsResp{
		Attribute: attribute.ToAttributeResp(updated),
		Added:     applied.ToAdd.Sorted(),
		Removed:   applied.ToRemove.Sorted(),
	}, nil
}

func outcomeOf(err error) string {
	if errors.Is(err, attribute.ErrUnresolvedOptions) {
		return metrics.OutcomeUnresolved
	}
	return metrics.OutcomeError
}

func wrap(op string, err error) error {
	var ae *attribute.AttributeError
	var verrs validation.Errors
	if errors.As(err, &ae) || errors.As(err, &verrs) {
		return err
	}
	logger.Error(op+" failed", err)
	return attribute.NewInternal(op, err)
}
