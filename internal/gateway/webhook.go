// Package gateway exposes the HTTP surface for external integrations,
// currently the git webhook that closes work items when their pull request
// merges.
package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/example/foreman/internal/core/workitem"
	"github.com/example/foreman/internal/ports/primary"
)

// GitWebhookPath is the route the webhook handler is mounted on.
const GitWebhookPath = "/webhook/git"

// GitWebhook handles GitHub-style webhook deliveries. When a pull request
// merges and its URL matches a work item's external refs, the item is
// marked done.
type GitWebhook struct {
	items  primary.WorkItemService
	secret string
	logger *slog.Logger
}

// NewGitWebhook creates the webhook handler. An empty secret disables
// signature verification.
func NewGitWebhook(items primary.WorkItemService, secret string, logger *slog.Logger) *GitWebhook {
	return &GitWebhook{items: items, secret: secret, logger: logger}
}

type gitEvent struct {
	Action      string `json:"action"`
	PullRequest *struct {
		Merged  bool   `json:"merged"`
		HTMLURL string `json:"html_url"`
	} `json:"pull_request"`
}

// ServeHTTP implements http.Handler.
func (h *GitWebhook) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if h.secret != "" && !h.verifySignature(body, r.Header.Get("X-Hub-Signature-256")) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var event gitEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Error("git webhook: bad payload", "err", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if event.Action == "closed" && event.PullRequest != nil &&
		event.PullRequest.Merged && event.PullRequest.HTMLURL != "" {
		h.handleMergedPR(r, event.PullRequest.HTMLURL)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// handleMergedPR marks the matching work item done. An unmatched PR is not
// an error; most merges have nothing to do with tracked items.
func (h *GitWebhook) handleMergedPR(r *http.Request, prURL string) {
	item, err := h.items.FindByExternalRef(r.Context(), prURL)
	if err != nil {
		h.logger.Error("git webhook: external ref lookup failed", "url", prURL, "err", err)
		return
	}
	if item == nil {
		return
	}

	if _, err := h.items.UpdateWorkItemState(r.Context(), item.ID, workitem.StateDone); err != nil {
		h.logger.Error("git webhook: failed to mark item done", "item", item.ID, "err", err)
		return
	}
	h.logger.Info("PR merged, work item marked done", "item", item.ID, "url", prURL)
}

func (h *GitWebhook) verifySignature(body []byte, header string) bool {
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(header))
}

// NewServer builds the http.Server hosting the webhook routes.
func NewServer(addr string, webhook *GitWebhook) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(GitWebhookPath, webhook)
	return &http.Server{Addr: addr, Handler: mux}
}
