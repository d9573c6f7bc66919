// Package memory implements storage.Database with in-process maps.
// It backs the local replica the bridge keeps of its own view, and it is
// the store the tests run against.
package memory

import (
	"context"
	"sync"

	"github.com/voco-chat/bridge/internal/domain"
	"github.com/voco-chat/bridge/internal/storage"
)

type memberKey struct {
	UserID   domain.UserID
	ServerID domain.ServerID
}

type friendKey struct {
	UserID   domain.UserID
	TargetID domain.UserID
}

// Store implements an in-memory storage.
type Store struct {
	mu      sync.RWMutex
	users   map[domain.UserID]domain.User
	servers map[domain.ServerID]domain.Server
	members map[memberKey]domain.Member
	friends map[friendKey]domain.Friend
}

func NewStore() *Store {
	return &Store{
		users:   make(map[domain.UserID]domain.User),
		servers: make(map[domain.ServerID]domain.Server),
		members: make(map[memberKey]domain.Member),
		friends: make(map[friendKey]domain.Friend),
	}
}

func (s *Store) User(ctx context.Context, id domain.UserID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

func (s *Store) Server(ctx context.Context, id domain.ServerID) (*domain.Server, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sv, ok := s.servers[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &sv, nil
}

func (s *Store) Member(ctx context.Context, userID domain.UserID, serverID domain.ServerID) (*domain.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[memberKey{userID, serverID}]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &m, nil
}

func (s *Store) ServerMembers(ctx context.Context, serverID domain.ServerID) ([]domain.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Member, 0, len(s.members))
	for k, m := range s.members {
		if k.ServerID == serverID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Store) SetMember(ctx context.Context, member domain.Member) error {
	if member.UserID == "" || member.ServerID == "" {
		return storage.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[memberKey{member.UserID, member.ServerID}] = member
	return nil
}

func (s *Store) DeleteMember(ctx context.Context, userID domain.UserID, serverID domain.ServerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members, memberKey{userID, serverID})
	return nil
}

func (s *Store) Friend(ctx context.Context, userID, targetID domain.UserID) (*domain.Friend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.friends[friendKey{userID, targetID}]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &f, nil
}

func (s *Store) UserFriends(ctx context.Context, userID domain.UserID) ([]domain.Friend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Friend, 0)
	for k, f := range s.friends {
		if k.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *Store) SetFriend(ctx context.Context, friend domain.Friend) error {
	if friend.UserID == "" || friend.TargetID == "" {
		return storage.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.friends[friendKey{friend.UserID, friend.TargetID}] = friend
	return nil
}

func (s *Store) DeleteFriend(ctx context.Context, userID, targetID domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.friends, friendKey{userID, targetID})
	return nil
}

func (s *Store) SetUser(ctx context.Context, user domain.User) error {
	if user.ID == "" {
		return storage.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *Store) SetServer(ctx context.Context, server domain.Server) error {
	if server.ID == "" {
		return storage.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.servers[server.ID] = server
	return nil
}
