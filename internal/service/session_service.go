package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"roomlink-be/internal/dto"
	"roomlink-be/internal/model"
	"roomlink-be/internal/pkg/logger"
	"roomlink-be/internal/repository/unitofwork"
	"roomlink-be/pkg/events"
	pktNats "roomlink-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	roomCodeLength   = 8
	roomCodeAttempts = 10

	availableSessionsCacheTTL = 5 * time.Second
)

type ISessionService interface {
	CreateSession(ctx context.Context, hostId uuid.UUID, req *dto.CreateSessionRequest) (*model.Session, error)
	DeleteSession(ctx context.Context, actorId uuid.UUID, roomCode string) error
	GetSessionByRoomCode(ctx context.Context, roomCode string) (*model.Session, error)
	SessionDetail(ctx context.Context, userId uuid.UUID, roomCode string) (*dto.SessionDetailResponse, error)
	HostedSessions(ctx context.Context, hostId uuid.UUID) ([]model.Session, error)
	AvailableSessions(ctx context.Context, userId uuid.UUID) ([]dto.AvailableSessionResponse, error)

	JoinWithCode(ctx context.Context, userId uuid.UUID, roomCode string) (*model.Participant, error)
	InviteParticipant(ctx context.Context, actorId uuid.UUID, roomCode, username string) error
	MyInvitations(ctx context.Context, userId uuid.UUID) ([]dto.InvitationResponse, error)
	RespondInvite(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, action string) error
	Decide(ctx context.Context, actorId uuid.UUID, roomCode, targetUsername, action string) (string, error)
	AddParticipant(ctx context.Context, actorId uuid.UUID, roomCode, username string) error
	SessionRequests(ctx context.Context, actorId uuid.UUID, roomCode string) ([]dto.ParticipantResponse, error)
	CheckStatus(ctx context.Context, userId uuid.UUID, roomCode string) (string, error)

	ToggleSuggestions(ctx context.Context, actorId uuid.UUID, roomCode string) (bool, error)
	ToggleDiscoverability(ctx context.Context, actorId uuid.UUID, roomCode string) (bool, error)
	ToggleUserDiscoverability(ctx context.Context, userId uuid.UUID) (bool, error)

	ChatHistory(ctx context.Context, userId uuid.UUID, roomCode string, limit int) ([]model.ChatMessage, error)

	MarkConnected(ctx context.Context, userId uuid.UUID, roomCode, channelName string) error
	MarkDisconnected(ctx context.Context, userId uuid.UUID, roomCode string) error
	SetConnectionQuality(ctx context.Context, userId uuid.UUID, roomCode, quality string) error
}

type sessionService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
	rdb            *redis.Client
	logger         logger.ILogger
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *pktNats.Publisher,
	rdb *redis.Client,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		rdb:            rdb,
		logger:         log,
	}
}

// ========== Session lifecycle ==========

func (s *sessionService) CreateSession(ctx context.Context, hostId uuid.UUID, req *dto.CreateSessionRequest) (*model.Session, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	host, err := uow.UserRepository().GetById(ctx, hostId)
	if err != nil {
		return nil, ErrUserNotFound
	}

	maxParticipants := req.MaxParticipants
	if maxParticipants < 1 {
		maxParticipants = 10
	}
	suggestionsEnabled := true
	if req.SuggestionsEnabled != nil {
		suggestionsEnabled = *req.SuggestionsEnabled
	}
	discoverable := true
	if req.Discoverable != nil {
		discoverable = *req.Discoverable
	}

	roomCode, err := s.generateRoomCode(ctx, uow)
	if err != nil {
		return nil, err
	}

	session := &model.Session{
		Id:                   uuid.New(),
		RoomCode:             roomCode,
		HostId:               host.Id,
		IsActive:             true,
		IsDiscoverable:       discoverable,
		MaxParticipants:      maxParticipants,
		IsSuggestionsEnabled: suggestionsEnabled,
	}
	if err := uow.SessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	// The host is a participant too, auto-accepted and never pending.
	hostParticipant := &model.Participant{
		Id:                uuid.New(),
		SessionId:         session.Id,
		UserId:            host.Id,
		DisplayName:       host.Username,
		Status:            model.StatusAccepted,
		RequestType:       model.RequestTypeJoinRequest,
		ConnectionQuality: model.QualityHigh,
	}
	if err := uow.ParticipantRepository().Create(ctx, hostParticipant); err != nil {
		return nil, err
	}

	s.logger.Info("SessionService", "Session created", map[string]interface{}{"room_code": roomCode, "host": host.Username})
	return session, nil
}

// generateRoomCode draws 8-digit numeric codes until one clears the
// uniqueness constraint.
func (s *sessionService) generateRoomCode(ctx context.Context, uow unitofwork.UnitOfWork) (string, error) {
	for attempt := 0; attempt < roomCodeAttempts; attempt++ {
		code := ""
		for i := 0; i < roomCodeLength; i++ {
			n, err := rand.Int(rand.Reader, big.NewInt(10))
			if err != nil {
				return "", err
			}
			code += n.String()
		}

		exists, err := uow.SessionRepository().RoomCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique room code after %d attempts", roomCodeAttempts)
}

func (s *sessionService) DeleteSession(ctx context.Context, actorId uuid.UUID, roomCode string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.activeOrAnySession(ctx, uow, roomCode)
	if err != nil {
		return err
	}
	if session.HostId != actorId {
		return ErrForbidden
	}
	if err := uow.SessionRepository().SetActive(ctx, session.Id, false); err != nil {
		return err
	}

	// Members and waiting requesters learn the room is gone; they may be
	// polling a status endpoint rather than holding a socket.
	participants, err := uow.ParticipantRepository().FindBySession(ctx, session.Id)
	if err != nil {
		s.logger.Warn("SessionService", "Close published without participant list", map[string]interface{}{"room_code": roomCode, "error": err.Error()})
		return nil
	}
	for _, p := range participants {
		if p.UserId == session.HostId {
			continue
		}
		if p.Status != model.StatusAccepted && p.Status != model.StatusPending {
			continue
		}
		username := p.User.Username
		if username == "" {
			username = p.DisplayName
		}
		s.publishEvent(ctx, events.SessionClosed, map[string]interface{}{
			"user_id":   p.UserId.String(),
			"username":  username,
			"message":   fmt.Sprintf("Session %s was closed by the host.", session.RoomCode),
			"room_code": session.RoomCode,
		})
	}
	return nil
}

func (s *sessionService) GetSessionByRoomCode(ctx context.Context, roomCode string) (*model.Session, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return s.activeOrAnySession(ctx, uow, roomCode)
}

func (s *sessionService) HostedSessions(ctx context.Context, hostId uuid.UUID) ([]model.Session, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.SessionRepository().FindActiveByHost(ctx, hostId)
}

// AvailableSessions is the hot polled listing, so results sit in Redis for a
// few seconds per user.
func (s *sessionService) AvailableSessions(ctx context.Context, userId uuid.UUID) ([]dto.AvailableSessionResponse, error) {
	cacheKey := "available_sessions:" + userId.String()

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var result []dto.AvailableSessionResponse
			if err := json.Unmarshal(cached, &result); err == nil {
				return result, nil
			}
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.SessionRepository().FindDiscoverableExcludingUser(ctx, userId)
	if err != nil {
		return nil, err
	}

	result := make([]dto.AvailableSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		count, err := uow.ParticipantRepository().CountByStatus(ctx, session.Id, model.StatusAccepted)
		if err != nil {
			return nil, err
		}
		result = append(result, dto.AvailableSessionResponse{
			SessionResponse:  toSessionResponse(&session),
			ParticipantCount: count,
		})
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(result); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, payload, availableSessionsCacheTTL).Err(); err != nil {
				s.logger.Warn("SessionService", "Failed to cache available sessions", map[string]interface{}{"error": err.Error()})
			}
		}
	}

	return result, nil
}

func (s *sessionService) SessionDetail(ctx context.Context, userId uuid.UUID, roomCode string) (*dto.SessionDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.activeOrAnySession(ctx, uow, roomCode)
	if err != nil {
		return nil, err
	}

	me, err := uow.ParticipantRepository().GetBySessionAndUser(ctx, session.Id, userId)
	if err != nil {
		return nil, ErrParticipantNotFound
	}

	participants, err := uow.ParticipantRepository().FindBySession(ctx, session.Id)
	if err != nil {
		return nil, err
	}
	count, err := uow.ParticipantRepository().CountByStatus(ctx, session.Id, model.StatusAccepted)
	if err != nil {
		return nil, err
	}

	detail := &dto.SessionDetailResponse{
		Session:      toSessionResponse(session),
		Me:           toParticipantResponse(me),
		IsHost:       session.HostId == userId,
		CurrentCount: count,
	}
	for _, p := range participants {
		if p.UserId == session.HostId {
			continue
		}
		detail.Participants = append(detail.Participants, toParticipantResponse(&p))
	}

	if detail.IsHost {
		pending, err := uow.ParticipantRepository().FindBySessionStatusAndType(ctx, session.Id, model.StatusPending, model.RequestTypeJoinRequest)
		if err != nil {
			return nil, err
		}
		invited, err := uow.ParticipantRepository().FindBySessionStatusAndType(ctx, session.Id, model.StatusPending, model.RequestTypeInvite)
		if err != nil {
			return nil, err
		}
		for _, p := range pending {
			detail.PendingRequests = append(detail.PendingRequests, toParticipantResponse(&p))
		}
		for _, p := range invited {
			detail.InvitedUsers = append(detail.InvitedUsers, toParticipantResponse(&p))
		}

		discoverable, err := uow.UserRepository().FindDiscoverableExcludingSession(ctx, session.Id, session.HostId)
		if err != nil {
			return nil, err
		}
		for _, u := range discoverable {
			detail.Discoverable = append(detail.Discoverable, u.Username)
		}
	}

	return detail, nil
}

// ========== Join / invite flow ==========

// JoinWithCode registers (or re-affirms) a join request. Idempotent: calling
// it again while pending leaves the single existing row pending. No capacity
// gate here; pending participants only count against capacity on accept.
func (s *sessionService) JoinWithCode(ctx context.Context, userId uuid.UUID, roomCode string) (*model.Participant, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.activeSession(ctx, uow, roomCode)
	if err != nil {
		return nil, err
	}
	user, err := uow.UserRepository().GetById(ctx, userId)
	if err != nil {
		return nil, ErrUserNotFound
	}

	participant, err := uow.ParticipantRepository().GetBySessionAndUser(ctx, session.Id, userId)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if participant == nil {
		participant = &model.Participant{
			Id:                uuid.New(),
			SessionId:         session.Id,
			UserId:            user.Id,
			DisplayName:       user.Username,
			Status:            model.StatusPending,
			RequestType:       model.RequestTypeJoinRequest,
			ConnectionQuality: model.QualityHigh,
		}
		if session.HostId == userId {
			participant.Status = model.StatusAccepted
		}
		if err := uow.ParticipantRepository().Create(ctx, participant); err != nil {
			return nil, err
		}
		return participant, nil
	}

	switch participant.Status {
	case model.StatusKicked, model.StatusRejected:
		// Sticky for the subject; only a host re-add clears these.
		return nil, ErrParticipantBlocked
	case model.StatusAccepted:
		return participant, nil
	case model.StatusDisconnected:
		// Reconnect of a previously accepted participant: back to accepted
		// without a capacity recheck.
		if err := uow.ParticipantRepository().UpdateStatus(ctx, participant.Id, model.StatusAccepted); err != nil {
			return nil, err
		}
		participant.Status = model.StatusAccepted
		return participant, nil
	default:
		// Still pending: re-affirm, don't duplicate.
		participant.RequestType = model.RequestTypeJoinRequest
		if err := uow.ParticipantRepository().Save(ctx, participant); err != nil {
			return nil, err
		}
		return participant, nil
	}
}

func (s *sessionService) InviteParticipant(ctx context.Context, actorId uuid.UUID, roomCode, username string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.activeSession(ctx, uow, roomCode)
	if err != nil {
		return err
	}
	if session.HostId != actorId {
		return ErrForbidden
	}

	target, err := uow.UserRepository().GetByUsername(ctx, username)
	if err != nil {
		return ErrUserNotFound
	}
	if target.Id == actorId {
		return ErrInvalidTarget
	}

	participant, err := uow.ParticipantRepository().GetBySessionAndUser(ctx, session.Id, target.Id)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if participant == nil {
		participant = &model.Participant{
			Id:          uuid.New(),
			SessionId:   session.Id,
			UserId:      target.Id,
			DisplayName: target.Username,
			Status:      model.StatusPending,
			RequestType: model.RequestTypeInvite,
		}
		if err := uow.ParticipantRepository().Create(ctx, participant); err != nil {
			return err
		}
	} else {
		if participant.Status == model.StatusAccepted || participant.Status == model.StatusPending {
			return ErrAlreadyParticipant
		}
		participant.Status = model.StatusPending
		participant.RequestType = model.RequestTypeInvite
		if err := uow.ParticipantRepository().Save(ctx, participant); err != nil {
			return err
		}
	}

	host, err := uow.UserRepository().GetById(ctx, session.HostId)
	hostName := roomCode
	if err == nil {
		hostName = host.Username
	}
	s.publishEvent(ctx, events.SessionInvited, map[string]interface{}{
		"user_id":   target.Id.String(),
		"username":  target.Username,
		"email":     target.Email,
		"message":   fmt.Sprintf("You have been invited to join session %s by %s", session.RoomCode, hostName),
		"room_code": session.RoomCode,
	})

	return nil
}

func (s *sessionService) MyInvitations(ctx context.Context, userId uuid.UUID) ([]dto.InvitationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	invites, err := uow.ParticipantRepository().FindPendingInvitesForUser(ctx, userId)
	if err != nil {
		return nil, err
	}

	result := make([]dto.InvitationResponse, 0, len(invites))
	for _, invite := range invites {
		result = append(result, dto.InvitationResponse{
			SessionId:    invite.SessionId,
			RoomCode:     invite.Session.RoomCode,
			HostUsername: invite.Session.Host.Username,
			InvitedAt:    invite.JoinedAt,
		})
	}
	return result, nil
}

// RespondInvite lets the invited user accept or reject their own pending
// invite. Self-acceptance is a transition into accepted, so it runs the same
// transactional capacity gate as a host accept.
func (s *sessionService) RespondInvite(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, action string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	participant, err := uow.ParticipantRepository().GetBySessionAndUser(ctx, sessionId, userId)
	if err != nil {
		return ErrParticipantNotFound
	}
	if participant.RequestType != model.RequestTypeInvite || participant.Status != model.StatusPending {
		return ErrParticipantNotFound
	}

	if action == model.StatusRejected {
		return uow.ParticipantRepository().UpdateStatus(ctx, participant.Id, model.StatusRejected)
	}
	return s.acceptWithCapacityCheck(ctx, sessionId, participant.Id)
}

// ========== Host moderation ==========

// Decide applies a host decision on a pending request or an accepted member.
// Returns the resulting status.
func (s *sessionService) Decide(ctx context.Context, actorId uuid.UUID, roomCode, targetUsername, action string) (string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.activeSession(ctx, uow, roomCode)
	if err != nil {
		return "", err
	}
	if session.HostId != actorId {
		return "", ErrForbidden
	}

	target, err := uow.ParticipantRepository().GetBySessionAndUsername(ctx, session.Id, targetUsername)
	if err != nil {
		return "", ErrParticipantNotFound
	}
	if target.UserId == actorId {
		return "", ErrInvalidTarget
	}

	wasPending := target.Status == model.StatusPending

	var newStatus string
	switch action {
	case "accept":
		if err := s.acceptWithCapacityCheck(ctx, session.Id, target.Id); err != nil {
			return "", err
		}
		newStatus = model.StatusAccepted
	case "reject":
		if err := uow.ParticipantRepository().UpdateStatus(ctx, target.Id, model.StatusRejected); err != nil {
			return "", err
		}
		newStatus = model.StatusRejected
	case "kick":
		if err := uow.ParticipantRepository().UpdateStatus(ctx, target.Id, model.StatusKicked); err != nil {
			return "", err
		}
		newStatus = model.StatusKicked
	default:
		return "", fmt.Errorf("unknown action: %s", action)
	}

	// Accept/reject of a pending invite or join request notifies the subject.
	// Kicks are silent.
	if wasPending && action != "kick" {
		s.publishEvent(ctx, events.RequestDecided, map[string]interface{}{
			"user_id":   target.UserId.String(),
			"username":  targetUsername,
			"message":   fmt.Sprintf("Your join request was %s.", newStatus),
			"room_code": session.RoomCode,
		})
	}

	return newStatus, nil
}

// AddParticipant is the host's direct add: new users come in accepted, and
// previously kicked/rejected users are re-admitted. Both paths are capacity
// gated since they transition into accepted.
func (s *sessionService) AddParticipant(ctx context.Context, actorId uuid.UUID, roomCode, username string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.activeSession(ctx, uow, roomCode)
	if err != nil {
		return err
	}
	if session.HostId != actorId {
		return ErrForbidden
	}

	target, err := uow.UserRepository().GetByUsername(ctx, username)
	if err != nil {
		return ErrUserNotFound
	}
	if target.Id == actorId {
		return ErrInvalidTarget
	}

	participant, err := uow.ParticipantRepository().GetBySessionAndUser(ctx, session.Id, target.Id)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if participant != nil {
		if participant.Status == model.StatusAccepted || participant.Status == model.StatusPending {
			return ErrAlreadyParticipant
		}
		return s.acceptWithCapacityCheck(ctx, session.Id, participant.Id)
	}

	return s.createAcceptedParticipant(ctx, session.Id, target)
}

func (s *sessionService) SessionRequests(ctx context.Context, actorId uuid.UUID, roomCode string) ([]dto.ParticipantResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.activeOrAnySession(ctx, uow, roomCode)
	if err != nil {
		return nil, err
	}
	if session.HostId != actorId {
		return nil, ErrForbidden
	}

	pending, err := uow.ParticipantRepository().FindBySessionStatusAndType(ctx, session.Id, model.StatusPending, model.RequestTypeJoinRequest)
	if err != nil {
		return nil, err
	}

	result := make([]dto.ParticipantResponse, 0, len(pending))
	for _, p := range pending {
		result = append(result, toParticipantResponse(&p))
	}
	return result, nil
}

func (s *sessionService) CheckStatus(ctx context.Context, userId uuid.UUID, roomCode string) (string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.activeOrAnySession(ctx, uow, roomCode)
	if err != nil {
		return "", err
	}
	participant, err := uow.ParticipantRepository().GetBySessionAndUser(ctx, session.Id, userId)
	if err != nil {
		return "", ErrParticipantNotFound
	}
	return participant.Status, nil
}

func (s *sessionService) ToggleSuggestions(ctx context.Context, actorId uuid.UUID, roomCode string) (bool, error) {
	return s.toggleFlag(ctx, actorId, roomCode, func(session *model.Session) *bool {
		return &session.IsSuggestionsEnabled
	})
}

func (s *sessionService) ToggleDiscoverability(ctx context.Context, actorId uuid.UUID, roomCode string) (bool, error) {
	return s.toggleFlag(ctx, actorId, roomCode, func(session *model.Session) *bool {
		return &session.IsDiscoverable
	})
}

func (s *sessionService) toggleFlag(ctx context.Context, actorId uuid.UUID, roomCode string, field func(*model.Session) *bool) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.activeSession(ctx, uow, roomCode)
	if err != nil {
		return false, err
	}
	if session.HostId != actorId {
		return false, ErrForbidden
	}

	flag := field(session)
	*flag = !*flag
	if err := uow.SessionRepository().Update(ctx, session); err != nil {
		return false, err
	}
	return *flag, nil
}

// ToggleUserDiscoverability flips whether the user shows up in other hosts'
// invite panels and sees discoverable sessions offered to them.
func (s *sessionService) ToggleUserDiscoverability(ctx context.Context, userId uuid.UUID) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().GetById(ctx, userId)
	if err != nil {
		return false, ErrUserNotFound
	}

	next := !user.IsDiscoverable
	if err := uow.UserRepository().SetDiscoverable(ctx, userId, next); err != nil {
		return false, err
	}
	return next, nil
}

// ChatHistory returns the recent chat log of a room. Only admitted
// participants may read it.
func (s *sessionService) ChatHistory(ctx context.Context, userId uuid.UUID, roomCode string, limit int) ([]model.ChatMessage, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.activeOrAnySession(ctx, uow, roomCode)
	if err != nil {
		return nil, err
	}
	participant, err := uow.ParticipantRepository().GetBySessionAndUser(ctx, session.Id, userId)
	if err != nil {
		return nil, ErrParticipantNotFound
	}
	if participant.Status != model.StatusAccepted && participant.Status != model.StatusDisconnected {
		return nil, ErrForbidden
	}

	if limit < 1 || limit > 200 {
		limit = 50
	}
	return uow.MessageRepository().FindChatBySession(ctx, session.Id, limit)
}

// ========== Connection bookkeeping (advisory) ==========

// MarkConnected records the live connection handle and flips a disconnected
// participant back to accepted. Best effort: the hub does not depend on it.
func (s *sessionService) MarkConnected(ctx context.Context, userId uuid.UUID, roomCode, channelName string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.activeOrAnySession(ctx, uow, roomCode)
	if err != nil {
		return err
	}
	participant, err := uow.ParticipantRepository().GetBySessionAndUser(ctx, session.Id, userId)
	if err != nil {
		return ErrParticipantNotFound
	}

	if err := uow.ParticipantRepository().SetChannelName(ctx, participant.Id, channelName); err != nil {
		return err
	}
	if participant.Status == model.StatusDisconnected {
		return uow.ParticipantRepository().UpdateStatus(ctx, participant.Id, model.StatusAccepted)
	}
	return nil
}

func (s *sessionService) MarkDisconnected(ctx context.Context, userId uuid.UUID, roomCode string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.activeOrAnySession(ctx, uow, roomCode)
	if err != nil {
		return err
	}
	participant, err := uow.ParticipantRepository().GetBySessionAndUser(ctx, session.Id, userId)
	if err != nil {
		return ErrParticipantNotFound
	}
	if participant.Status != model.StatusAccepted {
		return nil
	}
	return uow.ParticipantRepository().UpdateStatus(ctx, participant.Id, model.StatusDisconnected)
}

// SetConnectionQuality records a member's self-reported link quality.
func (s *sessionService) SetConnectionQuality(ctx context.Context, userId uuid.UUID, roomCode, quality string) error {
	switch quality {
	case model.QualityHigh, model.QualityMedium, model.QualityLow:
	default:
		return ErrInvalidQuality
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.activeOrAnySession(ctx, uow, roomCode)
	if err != nil {
		return err
	}
	participant, err := uow.ParticipantRepository().GetBySessionAndUser(ctx, session.Id, userId)
	if err != nil {
		return ErrParticipantNotFound
	}
	return uow.ParticipantRepository().SetConnectionQuality(ctx, participant.Id, quality)
}

// ========== Internals ==========

// acceptWithCapacityCheck is the single gate for every transition into
// accepted. The accepted-count read and the status write share one
// transaction, with the session row locked, so two concurrent accepts cannot
// both pass a stale count.
func (s *sessionService) acceptWithCapacityCheck(ctx context.Context, sessionId, participantId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback() // no-op after Commit
	}()

	session, err := uow.SessionRepository().GetByIdForUpdate(ctx, sessionId)
	if err != nil {
		return ErrSessionNotFound
	}

	count, err := uow.ParticipantRepository().CountByStatus(ctx, sessionId, model.StatusAccepted)
	if err != nil {
		return err
	}
	if count >= int64(session.MaxParticipants) {
		return ErrSessionFull
	}

	if err := uow.ParticipantRepository().UpdateStatus(ctx, participantId, model.StatusAccepted); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *sessionService) createAcceptedParticipant(ctx context.Context, sessionId uuid.UUID, user *model.User) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback()
	}()

	session, err := uow.SessionRepository().GetByIdForUpdate(ctx, sessionId)
	if err != nil {
		return ErrSessionNotFound
	}

	count, err := uow.ParticipantRepository().CountByStatus(ctx, sessionId, model.StatusAccepted)
	if err != nil {
		return err
	}
	if count >= int64(session.MaxParticipants) {
		return ErrSessionFull
	}

	participant := &model.Participant{
		Id:          uuid.New(),
		SessionId:   sessionId,
		UserId:      user.Id,
		DisplayName: user.Username,
		Status:      model.StatusAccepted,
		RequestType: model.RequestTypeInvite,
	}
	if err := uow.ParticipantRepository().Create(ctx, participant); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *sessionService) activeSession(ctx context.Context, uow unitofwork.UnitOfWork, roomCode string) (*model.Session, error) {
	session, err := s.activeOrAnySession(ctx, uow, roomCode)
	if err != nil {
		return nil, err
	}
	if !session.IsActive {
		return nil, ErrSessionInactive
	}
	return session, nil
}

func (s *sessionService) activeOrAnySession(ctx context.Context, uow unitofwork.UnitOfWork, roomCode string) (*model.Session, error) {
	session, err := uow.SessionRepository().GetByRoomCode(ctx, roomCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// publishEvent is fire-and-forget: notification delivery never fails the
// admission transition that triggered it.
func (s *sessionService) publishEvent(ctx context.Context, eventType string, payload map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type:       eventType,
		Data:       payload,
		OccurredAt: time.Now(),
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("SessionService", "Failed to publish event", map[string]interface{}{"type": eventType, "error": err.Error()})
	}
}

func toSessionResponse(session *model.Session) dto.SessionResponse {
	return dto.SessionResponse{
		Id:                   session.Id,
		RoomCode:             session.RoomCode,
		HostUsername:         session.Host.Username,
		IsActive:             session.IsActive,
		IsDiscoverable:       session.IsDiscoverable,
		MaxParticipants:      session.MaxParticipants,
		IsSuggestionsEnabled: session.IsSuggestionsEnabled,
		CreatedAt:            session.CreatedAt,
	}
}

func toParticipantResponse(participant *model.Participant) dto.ParticipantResponse {
	username := participant.User.Username
	if username == "" {
		username = participant.DisplayName
	}
	return dto.ParticipantResponse{
		Id:                participant.Id,
		Username:          username,
		DisplayName:       participant.DisplayName,
		Status:            participant.Status,
		RequestType:       participant.RequestType,
		ConnectionQuality: participant.ConnectionQuality,
		JoinedAt:          participant.JoinedAt,
	}
}
