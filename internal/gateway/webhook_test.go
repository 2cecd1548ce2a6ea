package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/foreman/internal/core/workitem"
	"github.com/example/foreman/internal/ports/primary"
)

// stubWorkItemService implements the subset of primary.WorkItemService the
// webhook exercises.
type stubWorkItemService struct {
	byRef      map[string]*primary.WorkItem
	stateCalls map[string]workitem.State
}

func newStubWorkItemService() *stubWorkItemService {
	return &stubWorkItemService{
		byRef:      make(map[string]*primary.WorkItem),
		stateCalls: make(map[string]workitem.State),
	}
}

func (s *stubWorkItemService) CreateWorkItem(ctx context.Context, req primary.CreateWorkItemRequest) (*primary.WorkItem, error) {
	return nil, nil
}

func (s *stubWorkItemService) GetWorkItem(ctx context.Context, id string) (*primary.WorkItem, error) {
	return nil, nil
}

func (s *stubWorkItemService) UpdateWorkItem(ctx context.Context, id string, patch primary.UpdateWorkItemPatch) (*primary.WorkItem, error) {
	return nil, nil
}

func (s *stubWorkItemService) UpdateWorkItemState(ctx context.Context, id string, state workitem.State) (*primary.WorkItem, error) {
	s.stateCalls[id] = state
	return &primary.WorkItem{ID: id, State: state}, nil
}

func (s *stubWorkItemService) ListWorkItems(ctx context.Context, filters primary.WorkItemFilters) ([]*primary.WorkItem, error) {
	return nil, nil
}

func (s *stubWorkItemService) FindByExternalRef(ctx context.Context, ref string) (*primary.WorkItem, error) {
	return s.byRef[ref], nil
}

const mergedPayload = `{"action":"closed","pull_request":{"merged":true,"html_url":"https://github.com/example/repo/pull/7"}}`

func sign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestGitWebhook_MergedPRMarksItemDone(t *testing.T) {
	items := newStubWorkItemService()
	items.byRef["https://github.com/example/repo/pull/7"] = &primary.WorkItem{ID: "ITEM-001"}
	handler := NewGitWebhook(items, "", slog.New(slog.DiscardHandler))

	req := httptest.NewRequest(http.MethodPost, GitWebhookPath, strings.NewReader(mergedPayload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"ok":true`) {
		t.Errorf("unexpected body: %s", body)
	}
	if items.stateCalls["ITEM-001"] != workitem.StateDone {
		t.Errorf("expected ITEM-001 marked done, calls: %+v", items.stateCalls)
	}
}

func TestGitWebhook_UnmatchedPRIsIgnored(t *testing.T) {
	items := newStubWorkItemService()
	handler := NewGitWebhook(items, "", slog.New(slog.DiscardHandler))

	req := httptest.NewRequest(http.MethodPost, GitWebhookPath, strings.NewReader(mergedPayload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 even without a match, got %d", rec.Code)
	}
	if len(items.stateCalls) != 0 {
		t.Errorf("expected no state changes, got %+v", items.stateCalls)
	}
}

func TestGitWebhook_UnmergedCloseIsIgnored(t *testing.T) {
	items := newStubWorkItemService()
	items.byRef["https://github.com/example/repo/pull/7"] = &primary.WorkItem{ID: "ITEM-001"}
	handler := NewGitWebhook(items, "", slog.New(slog.DiscardHandler))

	payload := `{"action":"closed","pull_request":{"merged":false,"html_url":"https://github.com/example/repo/pull/7"}}`
	req := httptest.NewRequest(http.MethodPost, GitWebhookPath, strings.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if len(items.stateCalls) != 0 {
		t.Errorf("closed-without-merge must not touch items, got %+v", items.stateCalls)
	}
}

func TestGitWebhook_SignatureVerification(t *testing.T) {
	items := newStubWorkItemService()
	items.byRef["https://github.com/example/repo/pull/7"] = &primary.WorkItem{ID: "ITEM-001"}
	handler := NewGitWebhook(items, "hunter2", slog.New(slog.DiscardHandler))

	// Missing signature.
	req := httptest.NewRequest(http.MethodPost, GitWebhookPath, strings.NewReader(mergedPayload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 without signature, got %d", rec.Code)
	}

	// Wrong signature.
	req = httptest.NewRequest(http.MethodPost, GitWebhookPath, strings.NewReader(mergedPayload))
	req.Header.Set("X-Hub-Signature-256", sign("wrong-secret", mergedPayload))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 with bad signature, got %d", rec.Code)
	}

	// Valid signature.
	req = httptest.NewRequest(http.MethodPost, GitWebhookPath, strings.NewReader(mergedPayload))
	req.Header.Set("X-Hub-Signature-256", sign("hunter2", mergedPayload))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with valid signature, got %d", rec.Code)
	}
	if items.stateCalls["ITEM-001"] != workitem.StateDone {
		t.Errorf("expected ITEM-001 marked done after valid delivery")
	}
}

func TestGitWebhook_MethodAndBodyErrors(t *testing.T) {
	handler := NewGitWebhook(newStubWorkItemService(), "", slog.New(slog.DiscardHandler))

	req := httptest.NewRequest(http.MethodGet, GitWebhookPath, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for GET, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, GitWebhookPath, strings.NewReader("{not json"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad JSON, got %d", rec.Code)
	}
}

// Ensure the stub satisfies the interface
var _ primary.WorkItemService = (*stubWorkItemService)(nil)
