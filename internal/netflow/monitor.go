package netflow

import (
	"context"
	"fmt"

	"github.com/ndoctl-project/ndoctl/internal/ndo"
	"github.com/ndoctl-project/ndoctl/pkg/reconcile"
	"github.com/ndoctl-project/ndoctl/pkg/shape"
)

// ObjectRef points at a record or exporter either directly by UUID or by
// name within a template. When Template is zero the monitor's own template
// is searched.
type ObjectRef struct {
	UUID     string
	Name     string
	Template TemplateRef
}

func (r ObjectRef) empty() bool {
	return r.UUID == "" && r.Name == ""
}

// MonitorSpec declares the desired state of a NetFlow monitor. Record and
// Exporters are always declared on ensure: a nil Record clears the record
// reference and Exporters replaces the reference list wholesale.
type MonitorSpec struct {
	Name string
	UUID string

	Description *string
	Record      *ObjectRef
	Exporters   []ObjectRef
}

// recordRefKeys and exporterRefKeys shape the resolved reference details
// into the object-specific field names used on query output.
var (
	recordRefKeys = shape.KeyMap{
		"name":       "recordName",
		"reference":  "recordRef",
		"template":   "recordTemplateName",
		"templateId": "recordTemplateId",
	}
	exporterRefKeys = shape.KeyMap{
		"name":      "exporterName",
		"reference": "exporterRef",
	}
)

// resolveRef turns an ObjectRef into the referenced object's UUID. Name
// references are looked up in their template and must exist.
func (s *Service) resolveRef(ctx context.Context, kind objectKind, ref ObjectRef, fallback TemplateRef) (string, error) {
	if ref.UUID != "" {
		return ref.UUID, nil
	}
	tplRef := ref.Template
	if tplRef.ID == "" && tplRef.Name == "" {
		tplRef = fallback
	}
	tpl, err := s.loadTemplate(ctx, tplRef)
	if err != nil {
		return "", err
	}
	m := tpl.FindPolicyObject(kind.array, "", ref.Name)
	if m == nil {
		return "", fmt.Errorf("%w: %s %q in template %q", ndo.ErrObjectNotFound, kind.label, ref.Name, tpl.DisplayName())
	}
	return m.UUID(), nil
}

func (s *Service) monitorValues(ctx context.Context, ref TemplateRef, spec MonitorSpec) (reconcile.ReplaceSet, map[string]any, error) {
	recordRef := ""
	if spec.Record != nil && !spec.Record.empty() {
		uuid, err := s.resolveRef(ctx, kindRecord, *spec.Record, ref)
		if err != nil {
			return nil, nil, err
		}
		recordRef = uuid
	}

	exporterRefs := make([]any, 0, len(spec.Exporters))
	for _, e := range spec.Exporters {
		if e.empty() {
			continue
		}
		uuid, err := s.resolveRef(ctx, kindExporter, e, ref)
		if err != nil {
			return nil, nil, err
		}
		exporterRefs = append(exporterRefs, uuid)
	}

	var name any
	if spec.Name != "" {
		name = spec.Name
	}
	var rs reconcile.ReplaceSet
	rs = rs.SetKey("name", name).
		SetKey("description", optString(spec.Description)).
		SetKey("recordRef", recordRef).
		SetKey("exporterRefs", exporterRefs)

	payload := map[string]any{
		"name":         spec.Name,
		"description":  optString(spec.Description),
		"recordRef":    recordRef,
		"exporterRefs": exporterRefs,
	}
	return rs, payload, nil
}

// EnsureMonitor creates or updates a monitor to match spec, resolving every
// record and exporter reference to its UUID first.
func (s *Service) EnsureMonitor(ctx context.Context, ref TemplateRef, spec MonitorSpec) (*Result, error) {
	rs, payload, err := s.monitorValues(ctx, ref, spec)
	if err != nil {
		return nil, err
	}
	res, err := s.ensure(ctx, ref, kindMonitor, ensureInput{
		uuid:    spec.UUID,
		name:    spec.Name,
		replace: rs,
		payload: payload,
	})
	if err != nil {
		return nil, err
	}
	if res.Current != nil {
		if err := s.decorateMonitor(ctx, res.Current); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// DeleteMonitor removes a monitor by UUID or name.
func (s *Service) DeleteMonitor(ctx context.Context, ref TemplateRef, uuid, name string) (*Result, error) {
	return s.remove(ctx, ref, kindMonitor, uuid, name)
}

// QueryMonitors returns one monitor (uuid or name set) or all monitors,
// with record and exporter references resolved to names.
func (s *Service) QueryMonitors(ctx context.Context, ref TemplateRef, uuid, name, filter string) ([]map[string]any, error) {
	return s.query(ctx, ref, kindMonitor, uuid, name, filter, s.decorateMonitor)
}

// decorateMonitor rewrites the raw reference fields into the query output
// shape: recordRef gains a resolved recordName and the flat exporterRefs
// UUID list becomes a list of {exporterRef, exporterName} objects.
func (s *Service) decorateMonitor(ctx context.Context, details map[string]any) error {
	if ref, _ := details["recordRef"].(string); ref != "" {
		name, err := s.api.ObjectName(ctx, kindRecord.objectType, ref)
		if err != nil {
			return err
		}
		record := shape.MapKeys(map[string]any{"name": refName(name), "reference": ref}, recordRefKeys)
		for k, v := range shape.PruneMap(record) {
			details[k] = v
		}
	}

	refs, _ := details["exporterRefs"].([]any)
	exporters := make([]any, 0, len(refs))
	for _, r := range refs {
		uuid, _ := r.(string)
		name, err := s.api.ObjectName(ctx, kindExporter.objectType, uuid)
		if err != nil {
			return err
		}
		exporters = append(exporters, shape.PruneMap(
			shape.MapKeys(map[string]any{"name": refName(name), "reference": uuid}, exporterRefKeys),
		))
	}
	details["exporterRefs"] = exporters
	return nil
}

// refName maps an unresolved catalog name to nil so prune drops the field.
func refName(name string) any {
	if name == "" {
		return nil
	}
	return name
}
