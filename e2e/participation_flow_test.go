package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestServer はE2Eテスト用のサーバー
type TestServer struct {
	Echo    *echo.Echo
	Cleanup func()
}

// Request はHTTPリクエストを実行
func (s *TestServer) Request(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

// createUser はテスト用ユーザーを作成してIDを返す
func createUser(t *testing.T, server *TestServer, name, email string) string {
	t.Helper()
	rec := server.Request("POST", "/api/v1/admin/users", map[string]interface{}{
		"name": name, "email": email,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	return resp["id"].(string)
}

// createCategory はテスト用カテゴリを作成してIDを返す
func createCategory(t *testing.T, server *TestServer, name string) string {
	t.Helper()
	rec := server.Request("POST", "/api/v1/admin/categories", map[string]interface{}{
		"name": name,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	return resp["id"].(string)
}

// createPublishedEvent はイベントを作成して管理者が公開し、イベントIDを返す
func createPublishedEvent(t *testing.T, server *TestServer, initiatorID, categoryID string, limit int, moderation bool) string {
	t.Helper()
	body := map[string]interface{}{
		"title":              "Go Conference ハンズオン",
		"annotation":         "Goの並行処理パターンを実際に手を動かしながら学ぶハンズオンイベントです",
		"category_id":        categoryID,
		"event_date":         time.Now().Add(30 * 24 * time.Hour).Format(time.RFC3339),
		"participant_limit":  limit,
		"request_moderation": moderation,
	}
	rec := server.Request("POST", fmt.Sprintf("/api/v1/users/%s/events", initiatorID), body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	eventID := resp["id"].(string)
	require.Equal(t, "PENDING", resp["state"])

	rec = server.Request("PATCH", fmt.Sprintf("/api/v1/admin/events/%s", eventID), map[string]interface{}{
		"state_action": "PUBLISH_EVENT",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	return eventID
}

// TestE2E_HealthCheck はヘルスチェックをテスト
func TestE2E_HealthCheck(t *testing.T) {
	server := getTestServer(t)

	rec := server.Request("GET", "/api/v1/health", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp["status"])
}

// TestE2E_CompleteParticipationJourney は完全な参加ジャーニーをテスト
func TestE2E_CompleteParticipationJourney(t *testing.T) {
	server := getTestServer(t)

	initiatorID := createUser(t, server, "山田太郎", "yamada@example.com")
	requesterA := createUser(t, server, "鈴木花子", "suzuki@example.com")
	requesterB := createUser(t, server, "佐藤次郎", "sato@example.com")
	requesterC := createUser(t, server, "田中三郎", "tanaka@example.com")
	requesterD := createUser(t, server, "高橋四郎", "takahashi@example.com")
	categoryID := createCategory(t, server, "テクノロジー")

	eventID := createPublishedEvent(t, server, initiatorID, categoryID, 3, true)

	requestIDs := map[string]string{}

	// 1. 参加リクエスト作成（事前承認ありなのでPENDING）
	t.Run("参加リクエスト作成", func(t *testing.T) {
		for requester, key := range map[string]string{
			requesterA: "A", requesterB: "B", requesterC: "C", requesterD: "D",
		} {
			path := fmt.Sprintf("/api/v1/users/%s/requests?eventId=%s", requester, eventID)
			rec := server.Request("POST", path, nil, nil)
			require.Equal(t, http.StatusCreated, rec.Code)

			var resp map[string]interface{}
			json.Unmarshal(rec.Body.Bytes(), &resp)
			assert.Equal(t, "PENDING", resp["status"])
			requestIDs[key] = resp["id"].(string)
		}
	})

	// 2. 重複リクエストは拒否
	t.Run("重複リクエスト拒否", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/users/%s/requests?eventId=%s", requesterA, eventID)
		rec := server.Request("POST", path, nil, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	// 3. 主催者自身のリクエストは拒否
	t.Run("主催者自身のリクエスト拒否", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/users/%s/requests?eventId=%s", initiatorID, eventID)
		rec := server.Request("POST", path, nil, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	// 4. 2件を一括確定（定員3なのでカスケードは起きない）
	t.Run("一括確定", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/users/%s/events/%s/requests", initiatorID, eventID)
		rec := server.Request("PATCH", path, map[string]interface{}{
			"request_ids": []string{requestIDs["A"], requestIDs["B"]},
			"status":      "CONFIRMED",
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string][]map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.Len(t, resp["confirmed_requests"], 2)
		assert.Len(t, resp["rejected_requests"], 0)
	})

	// 5. 残り1枠に2件の確定は全体が失敗する
	t.Run("定員超過の一括確定は失敗", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/users/%s/events/%s/requests", initiatorID, eventID)
		rec := server.Request("PATCH", path, map[string]interface{}{
			"request_ids": []string{requestIDs["C"], requestIDs["D"]},
			"status":      "CONFIRMED",
		}, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)

		// 部分確定されていないことを確認
		rec = server.Request("GET", fmt.Sprintf("/api/v1/users/%s/events/%s", initiatorID, eventID), nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var ev map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &ev)
		assert.Equal(t, float64(2), ev["confirmed_requests"])
	})

	// 6. 最後の1枠を確定すると残りのPENDINGがカスケード拒否される
	t.Run("満員時のカスケード拒否", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/users/%s/events/%s/requests", initiatorID, eventID)
		rec := server.Request("PATCH", path, map[string]interface{}{
			"request_ids": []string{requestIDs["C"]},
			"status":      "CONFIRMED",
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string][]map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		require.Len(t, resp["confirmed_requests"], 1)
		require.Len(t, resp["rejected_requests"], 1)
		assert.Equal(t, requestIDs["D"], resp["rejected_requests"][0]["id"])
	})

	// 7. 確定済みリクエストのキャンセルで枠が解放される
	t.Run("キャンセルで枠解放", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/users/%s/requests/%s/cancel", requesterA, requestIDs["A"])
		rec := server.Request("PATCH", path, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.Equal(t, "CANCELED", resp["status"])

		rec = server.Request("GET", fmt.Sprintf("/api/v1/users/%s/events/%s", initiatorID, eventID), nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var ev map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &ev)
		assert.Equal(t, float64(2), ev["confirmed_requests"])
	})

	// 8. 参加者のリクエスト一覧
	t.Run("参加者のリクエスト一覧", func(t *testing.T) {
		rec := server.Request("GET", fmt.Sprintf("/api/v1/users/%s/requests", requesterB), nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp []map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		require.Len(t, resp, 1)
		assert.Equal(t, "CONFIRMED", resp[0]["status"])
	})
}

// TestE2E_AutoConfirm は事前承認なしイベントの自動確定をテスト
func TestE2E_AutoConfirm(t *testing.T) {
	server := getTestServer(t)

	initiatorID := createUser(t, server, "主催者", "organizer@example.com")
	requesterID := createUser(t, server, "参加者", "attendee@example.com")
	categoryID := createCategory(t, server, "勉強会")

	eventID := createPublishedEvent(t, server, initiatorID, categoryID, 10, false)

	t.Run("リクエストが即時確定される", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/users/%s/requests?eventId=%s", requesterID, eventID)
		rec := server.Request("POST", path, nil, nil)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.Equal(t, "CONFIRMED", resp["status"])
	})

	t.Run("イベントの確定数に反映される", func(t *testing.T) {
		rec := server.Request("GET", fmt.Sprintf("/api/v1/users/%s/events/%s", initiatorID, eventID), nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var ev map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &ev)
		assert.Equal(t, float64(1), ev["confirmed_requests"])
	})
}

// TestE2E_UnpublishedEvent は未公開イベントへのリクエストをテスト
func TestE2E_UnpublishedEvent(t *testing.T) {
	server := getTestServer(t)

	initiatorID := createUser(t, server, "主催者", "organizer2@example.com")
	requesterID := createUser(t, server, "参加者", "attendee2@example.com")
	categoryID := createCategory(t, server, "音楽")

	// 承認待ちのまま公開しない
	body := map[string]interface{}{
		"title":             "未公開イベント",
		"annotation":        "まだ管理者の承認を受けていない非公開状態のイベントです",
		"category_id":       categoryID,
		"event_date":        time.Now().Add(30 * 24 * time.Hour).Format(time.RFC3339),
		"participant_limit": 5,
	}
	rec := server.Request("POST", fmt.Sprintf("/api/v1/users/%s/events", initiatorID), body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var ev map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &ev)
	eventID := ev["id"].(string)

	t.Run("未公開イベントへのリクエストは拒否", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/users/%s/requests?eventId=%s", requesterID, eventID)
		rec := server.Request("POST", path, nil, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("未公開イベントは公開APIから見えない", func(t *testing.T) {
		rec := server.Request("GET", fmt.Sprintf("/api/v1/events/%s", eventID), nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
