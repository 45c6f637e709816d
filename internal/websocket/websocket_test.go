package websocket_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"fleet-backend/internal/models"
	ws "fleet-backend/internal/websocket"
)

// Параллельные рассылки в одно соединение: каждое событие доходит
// до клиента ровно один раз, писатель в соединение единственный
func TestConcurrentBroadcastsDelivered(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", uint(1))
		c.Set("role", models.RoleAdmin)
		c.Next()
	})
	r.GET("/ws", ws.Handler())

	srv := httptest.NewServer(r)
	defer srv.Close()

	ws.StartManager()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// Даем клиенту зарегистрироваться в менеджере
	time.Sleep(100 * time.Millisecond)

	const events = 16
	var wg sync.WaitGroup
	for i := 0; i < events; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ws.SendSnagEvent(ws.SnagCreatedType, 1, map[string]interface{}{"snag_id": n})
		}(i)
	}
	wg.Wait()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	seen := make(map[float64]bool)
	for len(seen) < events {
		_, message, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg struct {
			Type    string                 `json:"type"`
			Payload map[string]interface{} `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(message, &msg))
		require.Equal(t, ws.SnagCreatedType, msg.Type)

		id, ok := msg.Payload["snag_id"].(float64)
		require.True(t, ok)
		require.False(t, seen[id], "событие доставлено повторно")
		seen[id] = true
	}
}

// Клиент чужого филиала не получает событие, клиент со сквозным
// доступом получает
func TestBroadcastScopedToBranch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", uint(2))
		c.Set("role", models.RoleMechanic)
		c.Set("branch_id", uint(2))
		c.Next()
	})
	r.GET("/ws", ws.Handler())

	srv := httptest.NewServer(r)
	defer srv.Close()

	ws.StartManager()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	time.Sleep(100 * time.Millisecond)

	// Событие филиала 1 механику филиала 2 не доставляется
	ws.SendSnagEvent(ws.SnagResolvedType, 1, map[string]interface{}{"snag_id": 10})
	// Событие своего филиала доставляется
	ws.SendSnagEvent(ws.SnagResolvedType, 2, map[string]interface{}{"snag_id": 11})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type    string                 `json:"type"`
		Payload map[string]interface{} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(message, &msg))
	require.Equal(t, float64(11), msg.Payload["snag_id"])
}
