package service

import (
	"context"
	"fmt"
	"sync"

	"roomlink-be/internal/model"
	"roomlink-be/internal/repository/contract"
	"roomlink-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

// memStore is the shared backing state for the in-memory fakes. mu guards the
// maps; txMu emulates the row lock taken by GetByIdForUpdate, serializing
// Begin..Commit sections the way the real capacity gate serializes on the
// session row.
type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users        map[uuid.UUID]*model.User
	sessions     map[uuid.UUID]*model.Session
	participants map[uuid.UUID]*model.Participant

	notifications []model.Notification
	suggestions   []model.CommandSuggestion
	chats         []model.ChatMessage
	audios        []model.AudioMessage

	suggestionErr   error
	notificationErr error
	messageErr      error
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[uuid.UUID]*model.User),
		sessions:     make(map[uuid.UUID]*model.Session),
		participants: make(map[uuid.UUID]*model.Participant),
	}
}

func (st *memStore) addUser(username string) *model.User {
	st.mu.Lock()
	defer st.mu.Unlock()
	u := &model.User{Id: uuid.New(), Username: username, DisplayName: username, IsDiscoverable: true}
	st.users[u.Id] = u
	return u
}

type fakeUow struct {
	store *memStore
	inTx  bool
}

func (u *fakeUow) Begin(ctx context.Context) error {
	u.store.txMu.Lock()
	u.inTx = true
	return nil
}

func (u *fakeUow) Commit() error {
	if u.inTx {
		u.inTx = false
		u.store.txMu.Unlock()
	}
	return nil
}

func (u *fakeUow) Rollback() error {
	if u.inTx {
		u.inTx = false
		u.store.txMu.Unlock()
	}
	return nil
}

func (u *fakeUow) UserRepository() contract.UserRepository {
	return &fakeUserRepo{store: u.store}
}

func (u *fakeUow) SessionRepository() contract.SessionRepository {
	return &fakeSessionRepo{store: u.store}
}

func (u *fakeUow) ParticipantRepository() contract.ParticipantRepository {
	return &fakeParticipantRepo{store: u.store}
}

func (u *fakeUow) NotificationRepository() contract.NotificationRepository {
	return &fakeNotificationRepo{store: u.store}
}

func (u *fakeUow) SuggestionRepository() contract.SuggestionRepository {
	return &fakeSuggestionRepo{store: u.store}
}

func (u *fakeUow) MessageRepository() contract.MessageRepository {
	return &fakeMessageRepo{store: u.store}
}

type fakeFactory struct {
	store *memStore
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

// ---------- users ----------

type fakeUserRepo struct {
	store *memStore
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.users[user.Id] = user
	return nil
}

func (r *fakeUserRepo) GetById(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) SetDiscoverable(ctx context.Context, id uuid.UUID, discoverable bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.IsDiscoverable = discoverable
	return nil
}

func (r *fakeUserRepo) FindDiscoverableExcludingSession(ctx context.Context, sessionId, hostId uuid.UUID) ([]model.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []model.User
	for _, u := range r.store.users {
		if !u.IsDiscoverable || u.Id == hostId {
			continue
		}
		engaged := false
		for _, p := range r.store.participants {
			if p.SessionId == sessionId && p.UserId == u.Id &&
				(p.Status == model.StatusPending || p.Status == model.StatusAccepted) {
				engaged = true
				break
			}
		}
		if !engaged {
			out = append(out, *u)
		}
	}
	return out, nil
}

// ---------- sessions ----------

type fakeSessionRepo struct {
	store *memStore
}

func (r *fakeSessionRepo) withHost(s *model.Session) *model.Session {
	cp := *s
	if host, ok := r.store.users[s.HostId]; ok {
		cp.Host = *host
	}
	return &cp
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *model.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *session
	r.store.sessions[session.Id] = &cp
	return nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *model.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.sessions[session.Id]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *session
	r.store.sessions[session.Id] = &cp
	return nil
}

func (r *fakeSessionRepo) GetById(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.withHost(s), nil
}

func (r *fakeSessionRepo) GetByRoomCode(ctx context.Context, roomCode string) (*model.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.store.sessions {
		if s.RoomCode == roomCode {
			return r.withHost(s), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSessionRepo) GetByIdForUpdate(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	return r.GetById(ctx, id)
}

func (r *fakeSessionRepo) RoomCodeExists(ctx context.Context, roomCode string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.store.sessions {
		if s.RoomCode == roomCode {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSessionRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sessions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.IsActive = active
	return nil
}

func (r *fakeSessionRepo) FindActiveByHost(ctx context.Context, hostId uuid.UUID) ([]model.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []model.Session
	for _, s := range r.store.sessions {
		if s.HostId == hostId && s.IsActive {
			out = append(out, *r.withHost(s))
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) FindDiscoverableExcludingUser(ctx context.Context, userId uuid.UUID) ([]model.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []model.Session
	for _, s := range r.store.sessions {
		if !s.IsActive || !s.IsDiscoverable || s.HostId == userId {
			continue
		}
		engaged := false
		for _, p := range r.store.participants {
			if p.SessionId == s.Id && p.UserId == userId {
				engaged = true
				break
			}
		}
		if !engaged {
			out = append(out, *r.withHost(s))
		}
	}
	return out, nil
}

// ---------- participants ----------

type fakeParticipantRepo struct {
	store *memStore
}

func (r *fakeParticipantRepo) withRefs(p *model.Participant) *model.Participant {
	cp := *p
	if u, ok := r.store.users[p.UserId]; ok {
		cp.User = *u
	}
	if s, ok := r.store.sessions[p.SessionId]; ok {
		cp.Session = *s
		if host, ok := r.store.users[s.HostId]; ok {
			cp.Session.Host = *host
		}
	}
	return &cp
}

func (r *fakeParticipantRepo) Create(ctx context.Context, participant *model.Participant) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.participants {
		if p.SessionId == participant.SessionId && p.UserId == participant.UserId {
			return fmt.Errorf("duplicate participant for session %s", participant.SessionId)
		}
	}
	cp := *participant
	r.store.participants[participant.Id] = &cp
	return nil
}

func (r *fakeParticipantRepo) Save(ctx context.Context, participant *model.Participant) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.participants[participant.Id]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *participant
	r.store.participants[participant.Id] = &cp
	return nil
}

func (r *fakeParticipantRepo) GetBySessionAndUser(ctx context.Context, sessionId, userId uuid.UUID) (*model.Participant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.participants {
		if p.SessionId == sessionId && p.UserId == userId {
			return r.withRefs(p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeParticipantRepo) GetBySessionAndUsername(ctx context.Context, sessionId uuid.UUID, username string) (*model.Participant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.participants {
		if p.SessionId != sessionId {
			continue
		}
		if u, ok := r.store.users[p.UserId]; ok && u.Username == username {
			return r.withRefs(p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeParticipantRepo) CountByStatus(ctx context.Context, sessionId uuid.UUID, status string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for _, p := range r.store.participants {
		if p.SessionId == sessionId && p.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeParticipantRepo) FindBySession(ctx context.Context, sessionId uuid.UUID) ([]model.Participant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []model.Participant
	for _, p := range r.store.participants {
		if p.SessionId == sessionId {
			out = append(out, *r.withRefs(p))
		}
	}
	return out, nil
}

func (r *fakeParticipantRepo) FindBySessionStatusAndType(ctx context.Context, sessionId uuid.UUID, status, requestType string) ([]model.Participant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []model.Participant
	for _, p := range r.store.participants {
		if p.SessionId == sessionId && p.Status == status && p.RequestType == requestType {
			out = append(out, *r.withRefs(p))
		}
	}
	return out, nil
}

func (r *fakeParticipantRepo) FindPendingInvitesForUser(ctx context.Context, userId uuid.UUID) ([]model.Participant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []model.Participant
	for _, p := range r.store.participants {
		if p.UserId == userId && p.Status == model.StatusPending && p.RequestType == model.RequestTypeInvite {
			out = append(out, *r.withRefs(p))
		}
	}
	return out, nil
}

func (r *fakeParticipantRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.participants[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Status = status
	return nil
}

func (r *fakeParticipantRepo) SetChannelName(ctx context.Context, id uuid.UUID, channelName string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.participants[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.ChannelName = channelName
	return nil
}

func (r *fakeParticipantRepo) SetConnectionQuality(ctx context.Context, id uuid.UUID, quality string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.participants[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.ConnectionQuality = quality
	return nil
}

// ---------- notifications ----------

type fakeNotificationRepo struct {
	store *memStore
}

func (r *fakeNotificationRepo) Create(ctx context.Context, notification *model.Notification) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.notificationErr != nil {
		return r.store.notificationErr
	}
	r.store.notifications = append(r.store.notifications, *notification)
	return nil
}

func (r *fakeNotificationRepo) GetByUserId(ctx context.Context, userId uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []model.Notification
	for _, n := range r.store.notifications {
		if n.UserId == userId {
			out = append(out, n)
		}
	}
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (r *fakeNotificationRepo) GetUnreadCount(ctx context.Context, userId uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for _, notif := range r.store.notifications {
		if notif.UserId == userId && !notif.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := range r.store.notifications {
		if r.store.notifications[i].Id == id {
			r.store.notifications[i].IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeNotificationRepo) MarkAllAsRead(ctx context.Context, userId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := range r.store.notifications {
		if r.store.notifications[i].UserId == userId {
			r.store.notifications[i].IsRead = true
		}
	}
	return nil
}

// ---------- suggestions ----------

type fakeSuggestionRepo struct {
	store *memStore
}

func (r *fakeSuggestionRepo) AllEntries(ctx context.Context) ([]model.CommandSuggestion, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.suggestionErr != nil {
		return nil, r.store.suggestionErr
	}
	out := make([]model.CommandSuggestion, len(r.store.suggestions))
	copy(out, r.store.suggestions)
	return out, nil
}

func (r *fakeSuggestionRepo) GetOrCreate(ctx context.Context, suggestion *model.CommandSuggestion) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.store.suggestions {
		if s.Keyword == suggestion.Keyword {
			return false, nil
		}
	}
	r.store.suggestions = append(r.store.suggestions, *suggestion)
	return true, nil
}

func (r *fakeSuggestionRepo) Count(ctx context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.suggestions)), nil
}

// ---------- messages ----------

type fakeMessageRepo struct {
	store *memStore
}

func (r *fakeMessageRepo) CreateChatMessage(ctx context.Context, message *model.ChatMessage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.messageErr != nil {
		return r.store.messageErr
	}
	r.store.chats = append(r.store.chats, *message)
	return nil
}

func (r *fakeMessageRepo) CreateAudioMessage(ctx context.Context, message *model.AudioMessage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.messageErr != nil {
		return r.store.messageErr
	}
	r.store.audios = append(r.store.audios, *message)
	return nil
}

func (r *fakeMessageRepo) FindChatBySession(ctx context.Context, sessionId uuid.UUID, limit int) ([]model.ChatMessage, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []model.ChatMessage
	for _, m := range r.store.chats {
		if m.SessionId == sessionId {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
