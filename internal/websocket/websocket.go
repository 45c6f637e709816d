package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"fleet-backend/internal/permissions"
)

// Константы для типов сообщений WebSocket
const (
	SnagCreatedType         = "SNAG_CREATED"
	SnagAssignedType        = "SNAG_ASSIGNED"
	SnagResolvedType        = "SNAG_RESOLVED"
	BookingStatusUpdateType = "BOOKING_STATUS_UPDATE"
)

// Размер буфера исходящих сообщений клиента. Клиент, не успевающий
// читать, отключается.
const sendBufferSize = 64

// WebSocketMessage представляет формат сообщения WebSocket
type WebSocketMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WebSocketClient представляет клиентское соединение WebSocket.
// Клиент без филиала (allBranches) получает события всех филиалов.
// Все записи в соединение идут через канал send: gorilla/websocket
// допускает только одного пишущего.
type WebSocketClient struct {
	conn        *websocket.Conn
	userID      uint
	branchID    uint
	allBranches bool
	send        chan []byte
}

// writePump пишет в соединение из единственной горутины.
// Завершается при закрытии канала send или ошибке записи.
func (client *WebSocketClient) writePump() {
	for message := range client.send {
		if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("writePump: ошибка при отправке сообщения: %v", err)
			break
		}
	}
	client.conn.Close()
}

type branchBroadcast struct {
	branchID uint
	data     []byte
}

// WebSocketManager управляет всеми подключениями WebSocket.
// Карта клиентов изменяется только из горутины Start, поэтому
// рассылка и закрытие каналов не гонятся между собой.
type WebSocketManager struct {
	clients    map[*WebSocketClient]bool
	register   chan *WebSocketClient
	unregister chan *WebSocketClient
	broadcast  chan branchBroadcast
}

// Глобальный менеджер WebSocket
var wsManager = NewWebSocketManager()

// NewWebSocketManager создает новый менеджер WebSocket
func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[*WebSocketClient]bool),
		register:   make(chan *WebSocketClient),
		unregister: make(chan *WebSocketClient),
		broadcast:  make(chan branchBroadcast, sendBufferSize),
	}
}

// Start запускает обработку подключений WebSocket
func (manager *WebSocketManager) Start() {
	log.Printf("Запуск WebSocket Manager")
	go func() {
		for {
			select {
			case client := <-manager.register:
				manager.clients[client] = true
				log.Printf("Зарегистрирован клиент: userID=%d, branchID=%d", client.userID, client.branchID)

			case client := <-manager.unregister:
				manager.drop(client)

			case msg := <-manager.broadcast:
				for client := range manager.clients {
					if !client.allBranches && client.branchID != msg.branchID {
						continue
					}
					select {
					case client.send <- msg.data:
					default:
						// Буфер клиента переполнен, отключаем
						log.Printf("Broadcast: клиент userID=%d не успевает читать", client.userID)
						manager.drop(client)
					}
				}
			}
		}
	}()
}

// drop удаляет клиента и закрывает его соединение.
// Вызывается только из горутины Start.
func (manager *WebSocketManager) drop(client *WebSocketClient) {
	if _, ok := manager.clients[client]; !ok {
		return
	}
	delete(manager.clients, client)
	close(client.send)
	client.conn.Close()
	log.Printf("Отключен клиент: userID=%d", client.userID)
}

// BroadcastToBranch отправляет сообщение клиентам филиала и клиентам
// с доступом ко всем филиалам
func (manager *WebSocketManager) BroadcastToBranch(branchID uint, message *WebSocketMessage) {
	jsonMessage, err := json.Marshal(message)
	if err != nil {
		log.Printf("BroadcastToBranch: ошибка при кодировании сообщения: %v", err)
		return
	}

	manager.broadcast <- branchBroadcast{branchID: branchID, data: jsonMessage}
}

// Handler обрабатывает подключения WebSocket
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Upgrade") != "websocket" {
			c.String(http.StatusBadRequest, "Требуется WebSocket соединение")
			return
		}

		userID := c.GetUint("user_id")
		role := c.GetString("role")

		upgrader := websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Разрешаем подключения с любых источников
			},
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("Ошибка обновления соединения до WebSocket: %v", err)
			return
		}

		client := &WebSocketClient{
			conn:        conn,
			userID:      userID,
			allBranches: permissions.PermissionsFor(role).ViewAllBranches,
			send:        make(chan []byte, sendBufferSize),
		}
		if v, ok := c.Get("branch_id"); ok {
			if id, ok := v.(uint); ok {
				client.branchID = id
			}
		}

		wsManager.register <- client

		go client.writePump()
		go handleMessages(client)
	}
}

// handleMessages обрабатывает сообщения от клиента
func handleMessages(client *WebSocketClient) {
	defer func() {
		wsManager.unregister <- client
	}()

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			break
		}

		var data map[string]interface{}
		if err := json.Unmarshal(message, &data); err != nil {
			continue
		}

		// Поддерживаем только ping от клиента. Ответ уходит через канал
		// send, чтобы не писать в соединение из двух горутин
		if msgType, ok := data["type"].(string); ok && msgType == "ping" {
			pongMsg := map[string]interface{}{
				"type": "pong",
				"time": time.Now().Unix(),
			}
			pongJSON, _ := json.Marshal(pongMsg)
			select {
			case client.send <- pongJSON:
			default:
			}
		}
	}
}

// SendSnagEvent отправляет событие жизненного цикла неисправности
// клиентам соответствующего филиала
func SendSnagEvent(eventType string, branchID uint, payload interface{}) {
	wsManager.BroadcastToBranch(branchID, &WebSocketMessage{
		Type:    eventType,
		Payload: payload,
	})
}

// SendBookingStatusUpdate отправляет обновление статуса бронирования
func SendBookingStatusUpdate(branchID uint, bookingID uint, status string) {
	wsManager.BroadcastToBranch(branchID, &WebSocketMessage{
		Type: BookingStatusUpdateType,
		Payload: map[string]interface{}{
			"booking_id": bookingID,
			"status":     status,
		},
	})
}

var startOnce sync.Once

// StartManager запускает менеджер WebSocket. Повторные вызовы
// не порождают второй обработчик над той же картой клиентов.
func StartManager() {
	startOnce.Do(wsManager.Start)
}
