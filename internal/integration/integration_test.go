package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialchat/backend/config"
	"github.com/socialchat/backend/internal/models"
	"github.com/socialchat/backend/internal/server"
	"github.com/socialchat/backend/internal/testhelpers"
)

// TestChatFlow runs the register -> login -> profile -> message -> search
// flow against a real PostgreSQL instance.
func TestChatFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupPostgresTestDB(t)
	cfg := &config.Config{
		ServerHost:     "127.0.0.1",
		ServerPort:     "0",
		JWTSecret:      "test-secret-0123456789",
		AllowedOrigins: "http://localhost:5173",
	}
	router := server.New(cfg, db, nil, nil).Router()

	post := func(path, token string, payload gin.H) *httptest.ResponseRecorder {
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		req := httptest.NewRequest("POST", path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}
	get := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// Register both sides of the conversation.
	for _, u := range []gin.H{
		{"username": "UserA", "password": "UserApassword", "email": "usera@gmail.com"},
		{"username": "UserB", "password": "UserBpassword", "email": "userb@gmail.com"},
	} {
		w := post("/api/v1/auth/register", "", u)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	login := func(username, password string) (string, string) {
		w := post("/api/v1/auth/login", "", gin.H{"username": username, "password": password})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var pair struct {
			Access  string `json:"access"`
			Refresh string `json:"refresh"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pair))
		return pair.Access, pair.Refresh
	}

	staleAccess, _ := login("UserA", "UserApassword")
	accessA, refreshA := login("UserA", "UserApassword")
	accessB, _ := login("UserB", "UserBpassword")

	// The first login's pair was evicted by the second.
	w := post("/api/v1/profile", staleAccess, gin.H{"first_name": "User", "last_name": "A"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Refresh rotates the live pair in place.
	w = post("/api/v1/auth/refresh", "", gin.H{"refresh": refreshA})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rotated struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rotated))
	require.NotEqual(t, refreshA, rotated.Refresh)
	accessA = rotated.Access

	// Profiles for both users.
	w = post("/api/v1/profile", accessA, gin.H{
		"first_name": "User", "last_name": "A", "caption": "Sender", "about": "I am the sender",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = post("/api/v1/profile", accessB, gin.H{
		"first_name": "User", "last_name": "B", "caption": "Receiver", "about": "I am the receiver",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var userA, userB models.User
	require.NoError(t, db.Where("username = ?", "UserA").First(&userA).Error)
	require.NoError(t, db.Where("username = ?", "UserB").First(&userB).Error)

	// A message with two attachments.
	upload := models.FileUpload{ObjectKey: "uploads/integration.png", FileName: "avatar.png"}
	require.NoError(t, db.Create(&upload).Error)

	w = post("/api/v1/message", accessA, gin.H{
		"sender_id":   userA.ID,
		"receiver_id": userB.ID,
		"message":     "Hi, I am user A",
		"attachments": []gin.H{
			{"attachment_id": upload.ID, "caption": "new image"},
			{"attachment_id": upload.ID},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var attachmentCount int64
	require.NoError(t, db.Model(&models.MessageAttachment{}).Count(&attachmentCount).Error)
	assert.Equal(t, int64(2), attachmentCount)

	// UserB sees the unseen count when searching for UserA.
	w = get(fmt.Sprintf("/api/v1/profile?keyword=%s", "usera"), accessB)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var search struct {
		Results []struct {
			Unseen int64 `json:"unseen"`
			User   struct {
				Username string `json:"username"`
			} `json:"user"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &search))
	require.Len(t, search.Results, 1)
	assert.Equal(t, "UserA", search.Results[0].User.Username)
	assert.Equal(t, int64(1), search.Results[0].Unseen)

	// Conversation reads back from either side.
	w = get(fmt.Sprintf("/api/v1/message?user_id=%d", userA.ID), accessB)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Hi, I am user A")
}
