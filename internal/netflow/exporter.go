package netflow

import (
	"context"

	"github.com/ndoctl-project/ndoctl/pkg/reconcile"
	"github.com/ndoctl-project/ndoctl/pkg/shape"
)

// QoSSpec is the optional QoS marking sub-object of an exporter.
type QoSSpec struct {
	DSCP     *string
	Priority *int
}

// ExporterSpec declares the desired state of a NetFlow exporter. Nil fields
// are left untouched on update; sending an explicit empty value clears the
// field on the orchestrator.
type ExporterSpec struct {
	// Name of the exporter. Required for create; combined with UUID it
	// renames an existing exporter.
	Name string
	// UUID pins the object when renaming.
	UUID string

	Description     *string
	DestinationIP   *string
	DestinationPort *int
	SourceIPType    *string
	SourceIP        *string

	QoS *QoSSpec
	// ClearQoS removes the QoS sub-object entirely.
	ClearQoS bool
}

func (spec ExporterSpec) values() (reconcile.ReplaceSet, reconcile.RemoveSet, map[string]any) {
	var qos map[string]any
	if spec.QoS != nil {
		qos = map[string]any{
			"dscp": optString(spec.QoS.DSCP),
			"prio": optInt(spec.QoS.Priority),
		}
		// A QoS block with every field unset declares nothing.
		if shape.AllNil([]any{qos["dscp"], qos["prio"]}) {
			qos = nil
		}
	}

	var name any
	if spec.Name != "" {
		name = spec.Name
	}
	var rs reconcile.ReplaceSet
	rs = rs.SetKey("name", name).
		SetKey("description", optString(spec.Description)).
		SetKey("destIP", optString(spec.DestinationIP)).
		SetKey("destPort", optInt(spec.DestinationPort)).
		SetKey("sourceIPType", optString(spec.SourceIPType)).
		SetKey("sourceIP", optString(spec.SourceIP)).
		MergeMap(qos, "qosPolicy")

	var rm reconcile.RemoveSet
	if spec.ClearQoS {
		rm = rm.RemoveKey("qosPolicy")
	}

	payload := map[string]any{
		"name":         spec.Name,
		"description":  optString(spec.Description),
		"destIP":       optString(spec.DestinationIP),
		"destPort":     optInt(spec.DestinationPort),
		"sourceIPType": optString(spec.SourceIPType),
		"sourceIP":     optString(spec.SourceIP),
		"qosPolicy":    qos,
	}
	return rs, rm, payload
}

// EnsureExporter creates or updates an exporter to match spec.
func (s *Service) EnsureExporter(ctx context.Context, ref TemplateRef, spec ExporterSpec) (*Result, error) {
	rs, rm, payload := spec.values()
	return s.ensure(ctx, ref, kindExporter, ensureInput{
		uuid:    spec.UUID,
		name:    spec.Name,
		replace: rs,
		remove:  rm,
		payload: payload,
	})
}

// DeleteExporter removes an exporter by UUID or name. Deleting an absent
// exporter is a no-op.
func (s *Service) DeleteExporter(ctx context.Context, ref TemplateRef, uuid, name string) (*Result, error) {
	return s.remove(ctx, ref, kindExporter, uuid, name)
}

// QueryExporters returns one exporter (uuid or name set) or all exporters,
// optionally narrowed by a filter expression.
func (s *Service) QueryExporters(ctx context.Context, ref TemplateRef, uuid, name, filter string) ([]map[string]any, error) {
	return s.query(ctx, ref, kindExporter, uuid, name, filter, nil)
}
