package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck/internal/handlers/testutil"
	"github.com/promptdeck/promptdeck/internal/models"
)

func createPrompt(t *testing.T, env *testutil.Env, token string, payload map[string]any) models.Prompt {
	t.Helper()

	w := env.Request(http.MethodPost, "/api/prompts", payload, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var prompt models.Prompt
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &prompt)
	return prompt
}

func TestPromptSubmissionRequiresAuth(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodPost, "/api/prompts", map[string]any{
		"title": "무단 제출", "description": "설명", "content": "내용", "type": "SHARED",
	}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPromptSubmissionRequiresDescription(t *testing.T) {
	env := testutil.NewEnv(t)
	author := env.RegisterAndLogin("nodesc@example.com", "nodesc", "Passw0rd!234")

	w := env.Request(http.MethodPost, "/api/prompts", map[string]any{
		"title": "설명 없는 프롬프트", "description": "", "content": "내용", "type": "SHARED",
	}, author.Tokens.AccessToken)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestPromptLifecycle(t *testing.T) {
	env := testutil.NewEnv(t)

	author := env.RegisterAndLogin("author@example.com", "author", "Passw0rd!234")
	admin := env.RegisterAndLogin("admin@example.com", "adminuser", "Passw0rd!234")
	env.PromoteToAdmin(admin.User.ID)
	// Role change is read from the database on admin routes; a fresh token
	// carries the old role but still passes.
	adminLogin := env.Login("admin@example.com", "Passw0rd!234")

	prompt := createPrompt(t, env, author.Tokens.AccessToken, map[string]any{
		"title":       "이메일 답장 도우미",
		"description": "받은 이메일에 어울리는 답장을 만들어줍니다",
		"content":     "다음 이메일에 정중한 답장을 작성해줘: {{email}}",
		"type":        "MARKETPLACE",
		"price":       3000,
		"tags":        []string{"이메일", "비즈니스"},
	})
	require.Equal(t, models.PromptStatusPending, prompt.Status)

	// Not publicly listed while pending.
	list := env.Request(http.MethodGet, "/api/prompts", nil, "")
	require.Equal(t, http.StatusOK, list.Code)
	listResp := testutil.DecodeResponse(t, list)
	var prompts []models.Prompt
	testutil.DecodeInto(t, listResp.Data, &prompts)
	require.Empty(t, prompts)

	// A stranger cannot read it either, the owner can.
	anonymousGet := env.Request(http.MethodGet, "/api/prompts/"+prompt.ID, nil, "")
	require.Equal(t, http.StatusNotFound, anonymousGet.Code)
	ownerGet := env.Request(http.MethodGet, "/api/prompts/"+prompt.ID, nil, author.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, ownerGet.Code)

	// Admin approves from the queue.
	queue := env.Request(http.MethodGet, "/api/admin/prompts", nil, adminLogin.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, queue.Code, queue.Body.String())
	var queued []models.Prompt
	testutil.DecodeInto(t, testutil.DecodeResponse(t, queue).Data, &queued)
	require.Len(t, queued, 1)

	approve := env.Request(http.MethodPost, "/api/admin/prompts/"+prompt.ID+"/approve", nil, adminLogin.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, approve.Code, approve.Body.String())

	// A second decision reports a conflict.
	reject := env.Request(http.MethodPost, "/api/admin/prompts/"+prompt.ID+"/reject",
		map[string]string{"reason": "나중에 생각해보니"}, adminLogin.Tokens.AccessToken)
	require.Equal(t, http.StatusConflict, reject.Code)

	// Now publicly listed and readable; anonymous reads bump views.
	list = env.Request(http.MethodGet, "/api/prompts", nil, "")
	testutil.DecodeInto(t, testutil.DecodeResponse(t, list).Data, &prompts)
	require.Len(t, prompts, 1)

	read := env.Request(http.MethodGet, "/api/prompts/"+prompt.ID, nil, "")
	require.Equal(t, http.StatusOK, read.Code)
	var got models.Prompt
	testutil.DecodeInto(t, testutil.DecodeResponse(t, read).Data, &got)
	require.EqualValues(t, 1, got.Views)

	// Download increments the counter.
	download := env.Request(http.MethodPost, "/api/prompts/"+prompt.ID+"/download", nil, author.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, download.Code)
	testutil.DecodeInto(t, testutil.DecodeResponse(t, download).Data, &got)
	require.EqualValues(t, 1, got.Downloads)
}

func TestPromptOwnerEditAndModerationQueueFilter(t *testing.T) {
	env := testutil.NewEnv(t)

	author := env.RegisterAndLogin("owner@example.com", "owner", "Passw0rd!234")
	other := env.RegisterAndLogin("intruder@example.com", "intruder", "Passw0rd!234")

	prompt := createPrompt(t, env, author.Tokens.AccessToken, map[string]any{
		"title": "초안 프롬프트", "description": "설명", "content": "내용", "type": "SHARED", "draft": true,
	})
	require.Equal(t, models.PromptStatusDraft, prompt.Status)

	// Drafts do not appear in the moderation queue.
	adminUser := env.RegisterAndLogin("mod@example.com", "moduser", "Passw0rd!234")
	env.PromoteToAdmin(adminUser.User.ID)
	modLogin := env.Login("mod@example.com", "Passw0rd!234")
	queue := env.Request(http.MethodGet, "/api/admin/prompts", nil, modLogin.Tokens.AccessToken)
	var queued []models.Prompt
	testutil.DecodeInto(t, testutil.DecodeResponse(t, queue).Data, &queued)
	require.Empty(t, queued)

	// Another user cannot edit.
	edit := env.Request(http.MethodPut, "/api/prompts/"+prompt.ID,
		map[string]any{"title": "탈취"}, other.Tokens.AccessToken)
	require.Equal(t, http.StatusForbidden, edit.Code)

	// The owner edits and submits the draft.
	edit = env.Request(http.MethodPut, "/api/prompts/"+prompt.ID,
		map[string]any{"title": "완성된 프롬프트", "submit": true}, author.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, edit.Code, edit.Body.String())
	var updated models.Prompt
	testutil.DecodeInto(t, testutil.DecodeResponse(t, edit).Data, &updated)
	require.Equal(t, "완성된 프롬프트", updated.Title)
	require.Equal(t, models.PromptStatusPending, updated.Status)

	// Now it is queued.
	queue = env.Request(http.MethodGet, "/api/admin/prompts", nil, modLogin.Tokens.AccessToken)
	testutil.DecodeInto(t, testutil.DecodeResponse(t, queue).Data, &queued)
	require.Len(t, queued, 1)

	// The owner sees it under /mine.
	mine := env.Request(http.MethodGet, "/api/prompts/mine", nil, author.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, mine.Code)
	var minePrompts []models.Prompt
	testutil.DecodeInto(t, testutil.DecodeResponse(t, mine).Data, &minePrompts)
	require.Len(t, minePrompts, 1)
}

func TestPromptListingPaginationMeta(t *testing.T) {
	env := testutil.NewEnv(t)
	author := env.RegisterAndLogin("pager@example.com", "pager", "Passw0rd!234")

	for i := 0; i < 3; i++ {
		p := createPrompt(t, env, author.Tokens.AccessToken, map[string]any{
			"title": "목록용 프롬프트", "description": "설명", "content": "내용", "type": "SHARED",
		})
		require.NoError(t, env.DB.Model(&models.Prompt{}).
			Where("id = ?", p.ID).
			Update("status", models.PromptStatusApproved).Error)
	}

	w := env.Request(http.MethodGet, "/api/prompts?page=1&limit=2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := testutil.DecodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	require.Equal(t, 1, resp.Meta.Page)
	require.Equal(t, 2, resp.Meta.PerPage)
	require.EqualValues(t, 3, resp.Meta.Total)
	require.Equal(t, 2, resp.Meta.TotalPages)

	var prompts []models.Prompt
	testutil.DecodeInto(t, resp.Data, &prompts)
	require.Len(t, prompts, 2)
}
