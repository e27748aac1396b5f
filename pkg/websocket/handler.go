package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"social-system/config"
	"social-system/internal/service"
	"social-system/pkg/jwt"
	"social-system/pkg/logger"
	"social-system/pkg/redis"
	"social-system/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许跨域
	},
}

// 实时流名称
const (
	StreamIncomingRequests = "incoming_requests" // 发给我的待处理好友请求
	StreamFriends          = "friends"           // 我的好友列表
	StreamWall             = "wall"              // 某用户的留言墙
	StreamChat             = "chat"              // 与某用户的私聊频道
	StreamRating           = "rating"            // 某用户的评分视图
	StreamProfile          = "profile"           // 某用户的资料
)

// clientFrame 客户端控制帧
// subscribe/unsubscribe 操作 stream；带参数的流用 user 指定对方/目标
type clientFrame struct {
	Action string `json:"action"` // subscribe / unsubscribe / heartbeat
	Stream string `json:"stream"`
	User   string `json:"user,omitempty"`
}

// serverFrame 服务端推送帧
// 每次推送携带所属流的完整最新快照，客户端整体替换本地状态
type serverFrame struct {
	Type   string      `json:"type"` // snapshot / error
	Stream string      `json:"stream,omitempty"`
	User   string      `json:"user,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Hub 把服务层的实时订阅桥接到WebSocket连接
type Hub struct {
	friends    *service.FriendService
	wall       *service.WallService
	chat       *service.ChatService
	ratings    *service.RatingService
	profiles   *service.ProfileService
	jwtService *jwt.JWTService
	wsCfg      config.WebSocketConfig
}

// NewHub 创建Hub实例
func NewHub(
	friends *service.FriendService,
	wall *service.WallService,
	chat *service.ChatService,
	ratings *service.RatingService,
	profiles *service.ProfileService,
	jwtService *jwt.JWTService,
	wsCfg config.WebSocketConfig,
) *Hub {
	return &Hub{
		friends:    friends,
		wall:       wall,
		chat:       chat,
		ratings:    ratings,
		profiles:   profiles,
		jwtService: jwtService,
		wsCfg:      wsCfg,
	}
}

// Handle Gin路由处理函数
func (h *Hub) Handle(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Sec-WebSocket-Protocol"), "Bearer ")
	}
	if token == "" {
		response.Unauthorized(c, "缺少token")
		return
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		response.Unauthorized(c, "token无效或已过期")
		return
	}
	userID := claims.Subject
	name := claims.DisplayName()

	// 回显子协议，避免客户端提示 "Server sent no subprotocol"
	respHeader := http.Header{}
	if protocol := c.GetHeader("Sec-WebSocket-Protocol"); protocol != "" {
		respHeader.Set("Sec-WebSocket-Protocol", protocol)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, respHeader)
	if err != nil {
		return
	}

	client := NewClient(userID, conn)
	GetManager().AddClient(userID, client)

	// 连接建立即上线
	_ = redis.SetUserPresence(userID, name, "online")

	defer func() {
		client.Stop()
		client.CancelAll()
		GetManager().RemoveClient(userID, client)
		_ = conn.Close()
		_ = redis.SetUserPresence(userID, name, "offline")
	}()

	// 写协程 + 定时发送ping心跳
	go func() {
		ticker := time.NewTicker(h.wsCfg.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case msg := <-client.Send:
				_ = conn.WriteMessage(websocket.TextMessage, msg)
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
					client.Stop()
					return
				}
			case <-client.Done():
				return
			}
		}
	}()

	// 读协程（接收订阅控制帧与心跳）。若超时未收到任何读事件则断开
	_ = conn.SetReadDeadline(time.Now().Add(h.wsCfg.ReadTimeout))
	conn.SetPongHandler(func(appData string) error {
		return conn.SetReadDeadline(time.Now().Add(h.wsCfg.ReadTimeout))
	})
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.wsCfg.ReadTimeout))

		var frame clientFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			client.sendError("", "", "无法解析控制帧")
			continue
		}

		switch frame.Action {
		case "subscribe":
			h.subscribe(client, frame)
		case "unsubscribe":
			client.RemoveSub(subKey(frame.Stream, frame.User))
		case "heartbeat":
			_ = redis.RefreshUserPresence(userID)
		default:
			client.sendError(frame.Stream, frame.User, "未知操作")
		}
	}
}

// subscribe 建立一路实时订阅并把快照转发给客户端
// 订阅的生命周期挂在连接上，断开时全部取消
func (h *Hub) subscribe(client *Client, frame clientFrame) {
	ctx := context.Background()

	switch frame.Stream {
	case StreamIncomingRequests:
		ch, cancel, err := h.friends.WatchIncoming(ctx, client.UserID)
		if err != nil {
			client.sendError(frame.Stream, "", "订阅失败")
			return
		}
		forward(client, frame.Stream, "", cancel, ch)

	case StreamFriends:
		ch, cancel, err := h.friends.WatchFriends(ctx, client.UserID)
		if err != nil {
			client.sendError(frame.Stream, "", "订阅失败")
			return
		}
		forward(client, frame.Stream, "", cancel, ch)

	case StreamWall:
		if frame.User == "" {
			client.sendError(frame.Stream, "", "缺少user参数")
			return
		}
		ch, cancel, err := h.wall.WatchPosts(ctx, frame.User, client.UserID)
		if err != nil {
			client.sendError(frame.Stream, frame.User, "订阅失败")
			return
		}
		forward(client, frame.Stream, frame.User, cancel, ch)

	case StreamChat:
		if frame.User == "" {
			client.sendError(frame.Stream, "", "缺少user参数")
			return
		}
		ch, cancel, err := h.chat.WatchChannel(ctx, client.UserID, frame.User)
		if err != nil {
			client.sendError(frame.Stream, frame.User, "订阅失败")
			return
		}
		forward(client, frame.Stream, frame.User, cancel, ch)

	case StreamRating:
		if frame.User == "" {
			client.sendError(frame.Stream, "", "缺少user参数")
			return
		}
		ch, cancel, err := h.ratings.WatchTarget(ctx, frame.User)
		if err != nil {
			client.sendError(frame.Stream, frame.User, "订阅失败")
			return
		}
		forward(client, frame.Stream, frame.User, cancel, ch)

	case StreamProfile:
		if frame.User == "" {
			client.sendError(frame.Stream, "", "缺少user参数")
			return
		}
		ch, cancel, err := h.profiles.WatchProfile(ctx, frame.User)
		if err != nil {
			client.sendError(frame.Stream, frame.User, "订阅失败")
			return
		}
		forward(client, frame.Stream, frame.User, cancel, ch)

	default:
		client.sendError(frame.Stream, frame.User, "未知的流")
	}
}

// forward 登记订阅并启动快照转发协程
func forward[T any](client *Client, stream, user string, cancel func(), ch <-chan T) {
	client.AddSub(subKey(stream, user), cancel)
	go func() {
		for snapshot := range ch {
			data, err := json.Marshal(serverFrame{
				Type:   "snapshot",
				Stream: stream,
				User:   user,
				Data:   snapshot,
			})
			if err != nil {
				logger.Warn("序列化快照失败", zap.String("stream", stream), zap.Error(err))
				continue
			}
			select {
			case client.Send <- data:
			default:
				// 发送缓冲已满，丢弃本次快照，后续快照会带来最新状态
			}
		}
	}()
}

// sendError 向客户端推送错误帧
func (c *Client) sendError(stream, user, msg string) {
	data, err := json.Marshal(serverFrame{
		Type:   "error",
		Stream: stream,
		User:   user,
		Error:  msg,
	})
	if err != nil {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

func subKey(stream, user string) string {
	if user == "" {
		return stream
	}
	return stream + ":" + user
}
