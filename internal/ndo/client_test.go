package ndo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wI2L/jsondiff"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{Host: srv.URL, Username: "admin", Password: "pw"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestGetTemplate(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/mso/api/v1/templates/tpl-1" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if user, pw, _ := r.BasicAuth(); user != "admin" || pw != "pw" {
			t.Errorf("missing basic auth")
		}
		_ = json.NewEncoder(w).Encode(tenantPolicyDoc())
	}))

	tpl, err := c.GetTemplate(context.Background(), "tpl-1")
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	if tpl.DisplayName() != "tenant_template" || tpl.Type() != TenantPolicyType {
		t.Fatalf("unexpected template: %q %q", tpl.DisplayName(), tpl.Type())
	}
}

func TestFindTemplateID(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]TemplateSummary{
			{TemplateID: "tpl-9", TemplateName: "other", TemplateType: "fabricPolicy"},
			{TemplateID: "tpl-1", TemplateName: "tenant_template", TemplateType: "tenantPolicy"},
		})
	}))

	id, err := c.FindTemplateID(context.Background(), "tenant_template", TenantPolicyType)
	if err != nil || id != "tpl-1" {
		t.Fatalf("find: id=%q err=%v", id, err)
	}

	if _, err := c.FindTemplateID(context.Background(), "missing", TenantPolicyType); err == nil {
		t.Fatal("missing template must fail")
	}
}

func TestPatchTemplateSendsOps(t *testing.T) {
	var gotBody []map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(tenantPolicyDoc())
	}))

	ops := jsondiff.Patch{
		{Type: jsondiff.OperationReplace, Path: "/tenantPolicyTemplate/template/netFlowExporters/0/name", Value: "b"},
		{Type: jsondiff.OperationRemove, Path: "/tenantPolicyTemplate/template/netFlowExporters/1"},
	}
	if _, err := c.PatchTemplate(context.Background(), "tpl-1", ops); err != nil {
		t.Fatalf("patch: %v", err)
	}

	if len(gotBody) != 2 {
		t.Fatalf("server received %d ops", len(gotBody))
	}
	if gotBody[0]["op"] != "replace" || gotBody[0]["value"] != "b" {
		t.Fatalf("unexpected first op on the wire: %v", gotBody[0])
	}
	if gotBody[1]["op"] != "remove" {
		t.Fatalf("unexpected second op on the wire: %v", gotBody[1])
	}
	if _, hasValue := gotBody[1]["value"]; hasValue {
		t.Fatalf("remove op must not carry a value: %v", gotBody[1])
	}
}

func TestObjectName(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") != "netFlowExporter" {
			t.Errorf("type param = %q", r.URL.Query().Get("type"))
		}
		switch r.URL.Query().Get("uuid") {
		case "uuid-1":
			_ = json.NewEncoder(w).Encode(map[string]any{"uuid": "uuid-1", "name": "exp1"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	name, err := c.ObjectName(context.Background(), "netFlowExporter", "uuid-1")
	if err != nil || name != "exp1" {
		t.Fatalf("resolve: name=%q err=%v", name, err)
	}

	// absent uuid resolves to empty, not to an error
	name, err = c.ObjectName(context.Background(), "netFlowExporter", "nope")
	if err != nil || name != "" {
		t.Fatalf("absent uuid: name=%q err=%v", name, err)
	}
}

func TestAPIErrorSurfaced(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"code": "E_INVALID_PATCH", "error": "bad op"})
	}))

	_, err := c.PatchTemplate(context.Background(), "tpl-1", jsondiff.Patch{})
	if err == nil {
		t.Fatal("error status must surface")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "E_INVALID_PATCH" {
		t.Fatalf("want APIError with code, got %v", err)
	}
}
