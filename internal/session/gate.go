package session

import (
	"net/http"
	"sync"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Kind 区分两类会话主体
type Kind string

const (
	// KindUser 普通用户主体
	KindUser Kind = "user"
	// KindAdmin 管理员主体
	KindAdmin Kind = "admin"
)

const (
	tokenKey = "session_token"

	// SubjectIDKey 是中间件解析出的主体 ID 在 gin 上下文中的键
	SubjectIDKey = "__subject_id"
)

type subject struct {
	kind Kind
	id   uint
}

// Gate 持有会话令牌到主体的映射，是所有鉴权的入口。
// Cookie 里只存一个不透明的 uuid 令牌，主体信息保存在进程内，
// 登出即吊销令牌；服务重启后所有会话失效，与单进程部署的预期一致。
type Gate struct {
	mu       sync.RWMutex
	subjects map[string]subject
}

// NewGate 构造一个空的会话门
func NewGate() *Gate {
	return &Gate{subjects: make(map[string]subject)}
}

// Issue 为指定主体签发新会话令牌并写入 Cookie 会话。
// 先清空旧会话，避免登录态叠加。
func (g *Gate) Issue(c *gin.Context, kind Kind, id uint) error {
	sess := sessions.Default(c)
	if old, ok := sess.Get(tokenKey).(string); ok {
		g.mu.Lock()
		delete(g.subjects, old)
		g.mu.Unlock()
	}
	sess.Clear()

	token := uuid.NewString()
	g.mu.Lock()
	g.subjects[token] = subject{kind: kind, id: id}
	g.mu.Unlock()

	sess.Set(tokenKey, token)
	return sess.Save()
}

// Subject 从当前请求的 Cookie 会话解析指定类型的主体 ID
func (g *Gate) Subject(c *gin.Context, kind Kind) (uint, bool) {
	sess := sessions.Default(c)
	token, ok := sess.Get(tokenKey).(string)
	if !ok || token == "" {
		return 0, false
	}

	g.mu.RLock()
	sub, found := g.subjects[token]
	g.mu.RUnlock()

	if !found || sub.kind != kind {
		return 0, false
	}
	return sub.id, true
}

// Revoke 吊销当前请求的会话令牌并清空 Cookie 会话
func (g *Gate) Revoke(c *gin.Context) error {
	sess := sessions.Default(c)
	if token, ok := sess.Get(tokenKey).(string); ok {
		g.mu.Lock()
		delete(g.subjects, token)
		g.mu.Unlock()
	}
	sess.Clear()
	return sess.Save()
}

// RequireUser 要求请求携带有效的用户会话，否则返回 401
func (g *Gate) RequireUser() gin.HandlerFunc {
	return g.require(KindUser)
}

// RequireAdmin 要求请求携带有效的管理员会话，否则返回 401
func (g *Gate) RequireAdmin() gin.HandlerFunc {
	return g.require(KindAdmin)
}

func (g *Gate) require(kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := g.Subject(c, kind)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "未登录，请先登录"})
			return
		}
		c.Set(SubjectIDKey, id)
		c.Next()
	}
}

// SubjectID 取出中间件写入的主体 ID，仅在 Require* 之后的处理器里调用
func SubjectID(c *gin.Context) uint {
	id, _ := c.Get(SubjectIDKey)
	v, _ := id.(uint)
	return v
}
