// Package storage declares the Database collaborator the mutation
// services write through. The bridge consumes this interface; it does
// not own a persistence engine. Concurrent writers to the same record
// are serialized by the backing store, not here.
package storage

import (
	"context"
	"errors"

	"github.com/voco-chat/bridge/internal/domain"
)

// Common errors
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrDatabase      = errors.New("database error")
)

// Database is the full get/set/delete surface keyed by entity id.
// Getters return (nil, ErrNotFound) for a missing entity; setters upsert.
type Database interface {
	User(ctx context.Context, id domain.UserID) (*domain.User, error)
	Server(ctx context.Context, id domain.ServerID) (*domain.Server, error)

	Member(ctx context.Context, userID domain.UserID, serverID domain.ServerID) (*domain.Member, error)
	ServerMembers(ctx context.Context, serverID domain.ServerID) ([]domain.Member, error)
	SetMember(ctx context.Context, member domain.Member) error
	DeleteMember(ctx context.Context, userID domain.UserID, serverID domain.ServerID) error

	Friend(ctx context.Context, userID, targetID domain.UserID) (*domain.Friend, error)
	UserFriends(ctx context.Context, userID domain.UserID) ([]domain.Friend, error)
	SetFriend(ctx context.Context, friend domain.Friend) error
	DeleteFriend(ctx context.Context, userID, targetID domain.UserID) error

	SetUser(ctx context.Context, user domain.User) error
	SetServer(ctx context.Context, server domain.Server) error
}
