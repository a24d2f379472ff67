package ndo

import (
	"fmt"
)

// TemplateSummary is one row of the template summary listing.
type TemplateSummary struct {
	TemplateID   string `json:"templateId"`
	TemplateName string `json:"templateName"`
	TemplateType string `json:"templateType"`
}

// TenantPolicyType is the template type carrying tenant policy sub-objects.
const TenantPolicyType = "tenantPolicy"

// Template wraps one fetched template document. The document is the exclusive
// snapshot handed to the patch engine: lookups return live sub-maps of it, so
// a reconciliation against a match mutates the document in place.
type Template struct {
	ID  string
	doc map[string]any
}

// NewTemplate wraps an already-fetched document; used by tests and by the
// history log when restoring revisions.
func NewTemplate(id string, doc map[string]any) *Template {
	return &Template{ID: id, doc: doc}
}

// Doc exposes the underlying document.
func (t *Template) Doc() map[string]any {
	return t.doc
}

// DisplayName returns the template's display name.
func (t *Template) DisplayName() string {
	name, _ := t.doc["displayName"].(string)
	return name
}

// Type returns the template type, e.g. "tenantPolicy".
func (t *Template) Type() string {
	typ, _ := t.doc["templateType"].(string)
	return typ
}

// ValidateType fails unless the template has the wanted type. Object
// services call this before touching any policy array.
func (t *Template) ValidateType(want string) error {
	if got := t.Type(); got != want {
		return fmt.Errorf("%w: template %q is %q, need %q", ErrWrongType, t.ID, got, want)
	}
	return nil
}

// Match is one located object inside a policy array: its index in the array
// and its details map. Details is a live reference into the template
// document, not a copy.
type Match struct {
	Index   int
	Details map[string]any
}

// UUID returns the object's uuid field.
func (m *Match) UUID() string {
	id, _ := m.Details["uuid"].(string)
	return id
}

// Name returns the object's name field.
func (m *Match) Name() string {
	name, _ := m.Details["name"].(string)
	return name
}

// PolicyObjects returns all objects of the named policy array, in document
// order. A missing array yields an empty slice.
func (t *Template) PolicyObjects(arrayKey string) []*Match {
	items, _ := t.policyValue(arrayKey).([]any)
	matches := make([]*Match, 0, len(items))
	for i, item := range items {
		details, ok := item.(map[string]any)
		if !ok {
			continue
		}
		matches = append(matches, &Match{Index: i, Details: details})
	}
	return matches
}

// FindPolicyObject locates one object by uuid or, when uuid is empty, by
// name. It returns nil when nothing matches.
func (t *Template) FindPolicyObject(arrayKey, uuid, name string) *Match {
	for _, m := range t.PolicyObjects(arrayKey) {
		if uuid != "" {
			if m.UUID() == uuid {
				return m
			}
			continue
		}
		if name != "" && m.Name() == name {
			return m
		}
	}
	return nil
}

// ObjectBasePath builds the absolute document location for one object of a
// policy array. A nil match addresses the append position ("-"), the
// location an "add" op creates at.
func (t *Template) ObjectBasePath(arrayKey string, m *Match) string {
	if m == nil {
		return fmt.Sprintf("/tenantPolicyTemplate/template/%s/-", arrayKey)
	}
	return fmt.Sprintf("/tenantPolicyTemplate/template/%s/%d", arrayKey, m.Index)
}

// policyValue digs tenantPolicyTemplate.template.<key> out of the document.
func (t *Template) policyValue(key string) any {
	tpt, ok := t.doc["tenantPolicyTemplate"].(map[string]any)
	if !ok {
		return nil
	}
	inner, ok := tpt["template"].(map[string]any)
	if !ok {
		return nil
	}
	return inner[key]
}
