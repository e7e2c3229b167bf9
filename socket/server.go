package socket

import (
	"context"
	"errors"
	"log"
	"time"

	"vibin_discover/middleware"
	"vibin_discover/models"
	"vibin_discover/services"

	socketio "github.com/googollee/go-socket.io"
)

const namespace = "/"

// Outbound events
const (
	EventState  = "state"
	EventNotice = "notice"
	EventMatch  = "match"
)

var errNotJoined = errors.New("join a session first")

// connState is what a connection knows about its user
type connState struct {
	UserID    string
	SessionID string
}

type joinMessage struct {
	SessionID string `json:"sessionId"`
}

type swipeMessage struct {
	Liked bool `json:"liked"`
}

// Server mirrors the discover HTTP API over socket.io. Each session is a
// room; notices for a session are broadcast to it.
type Server struct {
	IO      *socketio.Server
	Actions *services.ActionService
	Photos  *services.PhotoService
	Auth    *middleware.Authenticator
	Now     func() time.Time
}

// NewSocketServer initializes and returns a new Socket.IO server
func NewSocketServer(actions *services.ActionService, photos *services.PhotoService, auth *middleware.Authenticator) *Server {
	s := &Server{
		IO:      socketio.NewServer(nil),
		Actions: actions,
		Photos:  photos,
		Auth:    auth,
		Now:     time.Now,
	}

	s.IO.OnConnect(namespace, s.onConnect)
	s.IO.OnEvent(namespace, "join", s.onJoin)
	s.IO.OnEvent(namespace, "swipe", s.onSwipe)
	s.IO.OnEvent(namespace, "undo", s.onUndo)
	s.IO.OnError(namespace, func(c socketio.Conn, err error) {
		log.Println("❌ Socket error:", err)
	})
	s.IO.OnDisconnect(namespace, func(c socketio.Conn, reason string) {
		log.Println("❌ Socket disconnected:", c.ID(), reason)
	})
	return s
}

// Notify broadcasts a notice to everyone in the session's room.
func (s *Server) Notify(sessionID string, n models.Notice) {
	s.IO.BroadcastToRoom(namespace, sessionID, EventNotice, n)
}

func (s *Server) onConnect(c socketio.Conn) error {
	u := c.URL()
	userID, err := s.Auth.ParseToken(u.Query().Get("token"))
	if err != nil {
		log.Println("❌ Socket rejected:", c.ID(), err)
		return err
	}
	c.SetContext(&connState{UserID: userID})
	log.Println("✅ Socket connected:", c.ID(), userID)
	return nil
}

func stateOf(c socketio.Conn) (*connState, bool) {
	st, ok := c.Context().(*connState)
	return st, ok && st != nil
}

func (s *Server) onJoin(c socketio.Conn, msg joinMessage) {
	st, ok := stateOf(c)
	if !ok {
		return
	}
	session, err := s.Actions.Sessions.Get(msg.SessionID, st.UserID)
	if err != nil {
		log.Printf("❌ Invalid sessionId %q in join request from %s", msg.SessionID, st.UserID)
		c.Emit(EventNotice, models.Notice{Title: "Session not found", Description: err.Error(), Variant: models.NoticeDestructive})
		return
	}
	if st.SessionID != "" {
		c.Leave(st.SessionID)
	}
	st.SessionID = session.ID()
	c.Join(session.ID())
	log.Printf("👥 User %s joined discover session %s", st.UserID, session.ID())
	c.Emit(EventState, s.Photos.ViewSession(context.Background(), session.Snapshot(), s.Now()))
}

func (s *Server) onSwipe(c socketio.Conn, msg swipeMessage) {
	action := services.ActionNotLiked
	if msg.Liked {
		action = services.ActionLiked
	}
	s.process(c, action)
}

func (s *Server) onUndo(c socketio.Conn) {
	s.process(c, services.ActionUndo)
}

// process runs the action and emits the resulting state. Failure notices
// reach the room through Notify.
func (s *Server) process(c socketio.Conn, action string) {
	st, ok := stateOf(c)
	if !ok {
		return
	}
	if st.SessionID == "" {
		c.Emit(EventNotice, models.Notice{Title: "Not joined", Description: errNotJoined.Error(), Variant: models.NoticeDestructive})
		return
	}

	result, err := s.Actions.ProcessAction(context.Background(), st.UserID, st.SessionID, action)
	if result == nil {
		log.Printf("❌ Error processing %s over socket for %s: %v", action, st.UserID, err)
		c.Emit(EventNotice, models.Notice{Title: "Session not found", Description: err.Error(), Variant: models.NoticeDestructive})
		return
	}
	if result.Swipe != nil && result.Swipe.Receipt != nil && result.Swipe.Receipt.Matched {
		c.Emit(EventMatch, result.Swipe.Receipt)
	}
	c.Emit(EventState, s.Photos.ViewSession(context.Background(), result.Snapshot, s.Now()))
}
