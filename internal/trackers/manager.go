// Package trackers provides unified management for chat-scoped state
package trackers

import (
	"sync"

	"github.com/google/uuid"

	"github.com/codegangsta/zcommand/internal/zcommand"
)

// maxUndo bounds how many undo buttons stay live per chat
const maxUndo = 16

// PendingUndo is an undo button that has not been pressed yet
type PendingUndo struct {
	Undo      func()
	MessageID int64 // 0 until the confirmation is sent
}

// ChatState holds everything tracked for a single chat
type ChatState struct {
	Dispatcher *zcommand.Dispatcher
	undo       map[string]*PendingUndo
	order      []string // tokens, oldest first
}

// Manager manages state for all chats
type Manager struct {
	newDispatcher func(chatID int64) *zcommand.Dispatcher
	chats         map[int64]*ChatState
	mu            sync.RWMutex
}

// NewManager creates a manager that builds each chat's dispatcher on first use
func NewManager(newDispatcher func(chatID int64) *zcommand.Dispatcher) *Manager {
	return &Manager{
		newDispatcher: newDispatcher,
		chats:         make(map[int64]*ChatState),
	}
}

// getOrCreate gets or creates the ChatState for a chat (must hold write lock)
func (m *Manager) getOrCreate(chatID int64) *ChatState {
	if cs, ok := m.chats[chatID]; ok {
		return cs
	}
	cs := &ChatState{
		undo: make(map[string]*PendingUndo),
	}
	m.chats[chatID] = cs
	return cs
}

// Dispatcher gets or creates the dispatcher for a chat
func (m *Manager) Dispatcher(chatID int64) *zcommand.Dispatcher {
	m.mu.Lock()
	defer m.mu.Unlock()

	cs := m.getOrCreate(chatID)
	if cs.Dispatcher == nil {
		cs.Dispatcher = m.newDispatcher(chatID)
	}
	return cs.Dispatcher
}

// AddUndo registers an undo action and returns the token identifying it.
// The oldest action is forgotten once a chat has maxUndo pending.
func (m *Manager) AddUndo(chatID int64, undo func()) string {
	token := uuid.NewString()[:8]

	m.mu.Lock()
	defer m.mu.Unlock()

	cs := m.getOrCreate(chatID)
	cs.undo[token] = &PendingUndo{Undo: undo}
	cs.order = append(cs.order, token)
	if len(cs.order) > maxUndo {
		delete(cs.undo, cs.order[0])
		cs.order = cs.order[1:]
	}
	return token
}

// SetUndoMessage records which message carries the undo button
func (m *Manager) SetUndoMessage(chatID int64, token string, msgID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cs, ok := m.chats[chatID]; ok {
		if p, ok := cs.undo[token]; ok {
			p.MessageID = msgID
		}
	}
}

// TakeUndo removes and returns the pending undo for token (nil if unknown)
func (m *Manager) TakeUndo(chatID int64, token string) *PendingUndo {
	m.mu.Lock()
	defer m.mu.Unlock()

	cs, ok := m.chats[chatID]
	if !ok {
		return nil
	}
	p, ok := cs.undo[token]
	if !ok {
		return nil
	}
	delete(cs.undo, token)
	for i, t := range cs.order {
		if t == token {
			cs.order = append(cs.order[:i], cs.order[i+1:]...)
			break
		}
	}
	return p
}

// ClearUndo forgets every pending undo for a chat
func (m *Manager) ClearUndo(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cs, ok := m.chats[chatID]; ok {
		cs.undo = make(map[string]*PendingUndo)
		cs.order = nil
	}
}

// Wait blocks until every chat's in-flight commands have completed
func (m *Manager) Wait() {
	m.mu.RLock()
	dispatchers := make([]*zcommand.Dispatcher, 0, len(m.chats))
	for _, cs := range m.chats {
		if cs.Dispatcher != nil {
			dispatchers = append(dispatchers, cs.Dispatcher)
		}
	}
	m.mu.RUnlock()

	for _, d := range dispatchers {
		d.Wait()
	}
}
