// Package netflow manages the NetFlow sub-objects of a tenant policy
// template: exporters, records and monitors. Each operation fetches the
// template snapshot, declares the desired field state, lets pkg/reconcile
// compute the patch operations and finally applies them through the
// orchestrator client.
package netflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/brunoga/deep"
	"github.com/wI2L/jsondiff"

	"github.com/ndoctl-project/ndoctl/internal/ndo"
	"github.com/ndoctl-project/ndoctl/pkg/reconcile"
	"github.com/ndoctl-project/ndoctl/pkg/shape"
)

// ErrNameRequired is returned when a create has no object name to send.
var ErrNameRequired = errors.New("netflow: object name required")

// API is the slice of the orchestrator client the services need.
type API interface {
	GetTemplate(ctx context.Context, id string) (*ndo.Template, error)
	FindTemplateID(ctx context.Context, name, templateType string) (string, error)
	PatchTemplate(ctx context.Context, id string, ops jsondiff.Patch) (*ndo.Template, error)
	ObjectName(ctx context.Context, objectType, uuid string) (string, error)
}

// TemplateRef addresses a tenant policy template either by ID or by display
// name; ID wins when both are set.
type TemplateRef struct {
	ID   string
	Name string
}

// Result reports one mutating operation. Previous, Proposed and Current are
// mutually detached: Current holds the post-apply object, or a copy of
// Proposed on dry-run (nil after a delete or when the object does not exist).
type Result struct {
	Changed  bool
	Ops      jsondiff.Patch
	Previous map[string]any
	Proposed map[string]any
	Current  map[string]any
}

// Service implements the per-kind operations on top of an orchestrator API.
type Service struct {
	api API
	// DryRun computes operations and proposed state without patching.
	DryRun bool
}

// NewService builds a Service.
func NewService(api API) *Service {
	return &Service{api: api}
}

// objectKind ties a policy array to its catalog object type.
type objectKind struct {
	array      string
	objectType string
	label      string
}

var (
	kindExporter = objectKind{"netFlowExporters", "netFlowExporter", "netflow exporter"}
	kindRecord   = objectKind{"netFlowRecords", "netFlowRecord", "netflow record"}
	kindMonitor  = objectKind{"netFlowMonitors", "netFlowMonitor", "netflow monitor"}
)

// loadTemplate resolves the reference and validates the template type.
func (s *Service) loadTemplate(ctx context.Context, ref TemplateRef) (*ndo.Template, error) {
	id := ref.ID
	if id == "" {
		var err error
		id, err = s.api.FindTemplateID(ctx, ref.Name, ndo.TenantPolicyType)
		if err != nil {
			return nil, err
		}
	}
	tpl, err := s.api.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tpl.ValidateType(ndo.TenantPolicyType); err != nil {
		return nil, err
	}
	return tpl, nil
}

// ensureInput is the declarative half of an ensure call: the replace/remove
// sets drive updates of an existing object, payload is the full create body
// before pruning.
type ensureInput struct {
	uuid    string
	name    string
	replace reconcile.ReplaceSet
	remove  reconcile.RemoveSet
	payload map[string]any
}

func (s *Service) ensure(ctx context.Context, ref TemplateRef, kind objectKind, in ensureInput) (*Result, error) {
	tpl, err := s.loadTemplate(ctx, ref)
	if err != nil {
		return nil, err
	}

	match := tpl.FindPolicyObject(kind.array, in.uuid, in.name)
	basePath := tpl.ObjectBasePath(kind.array, match)
	res := &Result{}

	var ops jsondiff.Patch
	if match != nil {
		res.Previous = deep.MustCopy(match.Details)
		if err := reconcile.AppendUpdateOps(&ops, match.Details, basePath, in.replace, in.remove); err != nil {
			return nil, err
		}
		res.Proposed = deep.MustCopy(match.Details)
	} else {
		if in.name == "" {
			return nil, fmt.Errorf("%w: cannot create %s", ErrNameRequired, kind.label)
		}
		payload := shape.PruneMap(in.payload)
		ops = append(ops, jsondiff.Operation{
			Type:  jsondiff.OperationAdd,
			Path:  basePath,
			Value: deep.MustCopy(payload),
		})
		res.Proposed = payload
	}

	res.Ops = ops
	res.Changed = len(ops) > 0
	if s.DryRun || len(ops) == 0 {
		// Callers may decorate Current in place; keep Ops and Proposed intact.
		res.Current = deep.MustCopy(res.Proposed)
		return res, nil
	}

	updated, err := s.api.PatchTemplate(ctx, tpl.ID, ops)
	if err != nil {
		return nil, err
	}
	if m := updated.FindPolicyObject(kind.array, in.uuid, in.name); m != nil {
		res.Current = m.Details
	}
	return res, nil
}

func (s *Service) remove(ctx context.Context, ref TemplateRef, kind objectKind, uuid, name string) (*Result, error) {
	tpl, err := s.loadTemplate(ctx, ref)
	if err != nil {
		return nil, err
	}

	match := tpl.FindPolicyObject(kind.array, uuid, name)
	if match == nil {
		return &Result{}, nil
	}

	res := &Result{
		Changed:  true,
		Previous: deep.MustCopy(match.Details),
		Ops: jsondiff.Patch{{
			Type: jsondiff.OperationRemove,
			Path: tpl.ObjectBasePath(kind.array, match),
		}},
	}
	if s.DryRun {
		return res, nil
	}
	if _, err := s.api.PatchTemplate(ctx, tpl.ID, res.Ops); err != nil {
		return nil, err
	}
	return res, nil
}

// query returns one object (uuid or name set) or all objects of the kind,
// optionally narrowed by a filter expression; decorate, when non-nil, may
// enrich each returned object.
func (s *Service) query(
	ctx context.Context,
	ref TemplateRef,
	kind objectKind,
	uuid, name, filter string,
	decorate func(ctx context.Context, details map[string]any) error,
) ([]map[string]any, error) {
	tpl, err := s.loadTemplate(ctx, ref)
	if err != nil {
		return nil, err
	}

	var matches []*ndo.Match
	if uuid != "" || name != "" {
		if m := tpl.FindPolicyObject(kind.array, uuid, name); m != nil {
			matches = append(matches, m)
		}
	} else {
		matches = tpl.PolicyObjects(kind.array)
	}

	var prog *FilterProgram
	if filter != "" {
		if prog, err = CompileFilter(filter); err != nil {
			return nil, err
		}
	}

	out := make([]map[string]any, 0, len(matches))
	for _, m := range matches {
		details := deep.MustCopy(m.Details)
		if prog != nil {
			pass, err := prog.Match(details)
			if err != nil {
				return nil, err
			}
			if !pass {
				continue
			}
		}
		if decorate != nil {
			if err := decorate(ctx, details); err != nil {
				return nil, err
			}
		}
		details["templateName"] = tpl.DisplayName()
		details["templateId"] = tpl.ID
		out = append(out, details)
	}
	return out, nil
}

// optString turns an optional flag value into a declared change: nil means
// "do not touch".
func optString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func optInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
