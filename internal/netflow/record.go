package netflow

import (
	"context"
	"fmt"

	"github.com/ndoctl-project/ndoctl/pkg/reconcile"
)

// matchParameterMap translates the user-facing match parameter names to the
// enums the orchestrator API expects.
var matchParameterMap = map[string]string{
	"destination-ip":   "dst-ip",
	"destination-ipv4": "dst-ipv4",
	"destination-ipv6": "dst-ipv6",
	"destination-mac":  "dst-mac",
	"destination-port": "dst-port",
	"ethertype":        "ethertype",
	"ip-protocol":      "proto",
	"source-ip":        "src-ip",
	"source-ipv4":      "src-ipv4",
	"source-ipv6":      "src-ipv6",
	"source-mac":       "src-mac",
	"source-port":      "src-port",
}

// MatchParameterNames lists the accepted match parameter names, for flag
// validation and completion.
func MatchParameterNames() []string {
	names := make([]string, 0, len(matchParameterMap))
	for name := range matchParameterMap {
		names = append(names, name)
	}
	return names
}

// RecordSpec declares the desired state of a NetFlow record.
type RecordSpec struct {
	Name string
	UUID string

	Description *string
	// MatchParameters replaces the record's match list wholesale. Nil means
	// no change; an empty non-nil slice clears the list.
	MatchParameters []string
}

func (spec RecordSpec) values() (reconcile.ReplaceSet, map[string]any, error) {
	var match any
	if spec.MatchParameters != nil {
		params := make([]any, 0, len(spec.MatchParameters))
		for _, p := range spec.MatchParameters {
			enum, ok := matchParameterMap[p]
			if !ok {
				return nil, nil, fmt.Errorf("netflow: unknown match parameter %q", p)
			}
			params = append(params, enum)
		}
		match = params
	}

	var name any
	if spec.Name != "" {
		name = spec.Name
	}
	var rs reconcile.ReplaceSet
	rs = rs.SetKey("name", name).
		SetKey("description", optString(spec.Description)).
		SetKey("match", match)

	payload := map[string]any{
		"name":        spec.Name,
		"description": optString(spec.Description),
		"match":       match,
	}
	return rs, payload, nil
}

// EnsureRecord creates or updates a record to match spec.
func (s *Service) EnsureRecord(ctx context.Context, ref TemplateRef, spec RecordSpec) (*Result, error) {
	rs, payload, err := spec.values()
	if err != nil {
		return nil, err
	}
	return s.ensure(ctx, ref, kindRecord, ensureInput{
		uuid:    spec.UUID,
		name:    spec.Name,
		replace: rs,
		payload: payload,
	})
}

// DeleteRecord removes a record by UUID or name.
func (s *Service) DeleteRecord(ctx context.Context, ref TemplateRef, uuid, name string) (*Result, error) {
	return s.remove(ctx, ref, kindRecord, uuid, name)
}

// QueryRecords returns one record (uuid or name set) or all records.
func (s *Service) QueryRecords(ctx context.Context, ref TemplateRef, uuid, name, filter string) ([]map[string]any, error) {
	return s.query(ctx, ref, kindRecord, uuid, name, filter, nil)
}
