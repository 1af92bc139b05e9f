//go:build unit

// Package fake is an in-memory stand-in for the postgres unit of work. A
// transaction takes the store lock for its whole body, mirroring the
// serialization the row locks provide, and stages its writes so a failed
// body leaves the store untouched.
package fake

import (
	"context"
	"sync"
	"time"

	"event-capacity/internal/domain/capacity"
	"event-capacity/internal/domain/overbooking"
	"event-capacity/internal/domain/reservation"
	"event-capacity/internal/infra"
	"event-capacity/internal/infra/db"
	"event-capacity/internal/infra/repository"
	"event-capacity/internal/usecase/queries"
	"event-capacity/internal/usecase/shared"

	"github.com/google/uuid"
)

type Job struct {
	Kind    string
	Topic   string
	Payload []byte
	RunAt   time.Time
}

type idemKey struct {
	Key           uuid.UUID
	ParticipantID uuid.UUID
}

type Store struct {
	mu           sync.Mutex
	pools        map[uuid.UUID]*capacity.Pool
	reservations map[uuid.UUID]*reservation.Reservation
	configs      map[uuid.UUID]*overbooking.Config
	jobs         []Job

	// Idempotency rows live outside the transactional maps: the claim is
	// made on a separate connection and must survive a rolled-back body.
	idemMu sync.Mutex
	idem   map[idemKey]*repository.IdempotencyRecord

	cacheMu       sync.Mutex
	invalidations []uuid.UUID
}

func NewStore() *Store {
	return &Store{
		pools:        make(map[uuid.UUID]*capacity.Pool),
		reservations: make(map[uuid.UUID]*reservation.Reservation),
		configs:      make(map[uuid.UUID]*overbooking.Config),
		idem:         make(map[idemKey]*repository.IdempotencyRecord),
	}
}

func (s *Store) AddPool(p *capacity.Pool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools[p.ID()] = copyPool(p)
}

func (s *Store) AddReservation(r *reservation.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations[r.ID()] = copyReservation(r)
}

func (s *Store) AddConfig(c *overbooking.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[c.PoolID()] = copyConfig(c)
}

func (s *Store) Pool(id uuid.UUID) *capacity.Pool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyPool(s.pools[id])
}

func (s *Store) Reservation(id uuid.UUID) *reservation.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.reservations[id]; ok {
		return copyReservation(r)
	}
	return nil
}

func (s *Store) Config(poolID uuid.UUID) *overbooking.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.configs[poolID]; ok {
		return copyConfig(c)
	}
	return nil
}

func (s *Store) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Job, len(s.jobs))
	copy(out, s.jobs)
	return out
}

func (s *Store) JobsByTopic(topic string) []Job {
	var out []Job
	for _, j := range s.Jobs() {
		if j.Topic == topic {
			out = append(out, j)
		}
	}
	return out
}

func (s *Store) Invalidations() []uuid.UUID {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	out := make([]uuid.UUID, len(s.invalidations))
	copy(out, s.invalidations)
	return out
}

func (s *Store) IdempotencyRecord(key, participantID uuid.UUID) *repository.IdempotencyRecord {
	s.idemMu.Lock()
	defer s.idemMu.Unlock()
	if rec, ok := s.idem[idemKey{key, participantID}]; ok {
		c := *rec
		return &c
	}
	return nil
}

// UoW returns the unit of work bound to this store.
func (s *Store) UoW() shared.UnitOfWork { return &uow{store: s} }

// IdempotencyRepo returns the standalone repository used for the
// out-of-transaction claim.
func (s *Store) IdempotencyRepo() shared.IdempotencyRepository { return &idemRepo{store: s} }

// ReservationRepo returns the standalone repository the reaper scans with.
func (s *Store) ReservationRepo() shared.ReservationRepository { return &reservationRepo{store: s} }

// Queries returns a read model synthesized straight from the stored entities.
func (s *Store) Queries() queries.ReservationQueries { return &reservationQueries{store: s} }

// Cache records invalidations and never hits on reads.
func (s *Store) Cache() queries.AvailabilityCache { return &cache{store: s} }

// --- unit of work ---

type uow struct {
	store *Store
}

func (u *uow) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	t := &tx{store: u.store,
		pools:        make(map[uuid.UUID]*capacity.Pool),
		reservations: make(map[uuid.UUID]*reservation.Reservation),
		configs:      make(map[uuid.UUID]*overbooking.Config),
	}
	if err := fn(ctx, t); err != nil {
		return err
	}
	t.commit()
	return nil
}

func (u *uow) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

type tx struct {
	store *Store

	// staged writes, flushed on commit
	pools        map[uuid.UUID]*capacity.Pool
	reservations map[uuid.UUID]*reservation.Reservation
	configs      map[uuid.UUID]*overbooking.Config
	jobs         []Job
}

func (t *tx) commit() {
	for id, p := range t.pools {
		t.store.pools[id] = p
	}
	for id, r := range t.reservations {
		t.store.reservations[id] = r
	}
	for id, c := range t.configs {
		t.store.configs[id] = c
	}
	t.store.jobs = append(t.store.jobs, t.jobs...)
}

func (t *tx) Pools() shared.PoolRepository                 { return &txPoolRepo{tx: t} }
func (t *tx) Reservations() shared.ReservationRepository   { return &txReservationRepo{tx: t} }
func (t *tx) Overbooking() shared.OverbookingRepository    { return &txOverbookingRepo{tx: t} }
func (t *tx) Idempotency() shared.IdempotencyRepository    { return &idemRepo{store: t.store} }
func (t *tx) Notifications() shared.NotificationRepository { return &txNotificationRepo{tx: t} }
func (t *tx) DB() db.DBTX                                  { return nil }

// --- transactional repositories ---

type txPoolRepo struct {
	tx *tx
}

func (r *txPoolRepo) Create(_ context.Context, _ db.DBTX, pool *capacity.Pool) error {
	for _, existing := range r.tx.store.pools {
		if existing.ScopeID() == pool.ScopeID() && existing.ScopeType() == pool.ScopeType() {
			return infra.WrapRepoErr("pool already exists for scope", nil, infra.KindDuplicateKey)
		}
	}
	r.tx.pools[pool.ID()] = copyPool(pool)
	return nil
}

func (r *txPoolRepo) find(id uuid.UUID) (*capacity.Pool, error) {
	if p, ok := r.tx.pools[id]; ok {
		return copyPool(p), nil
	}
	if p, ok := r.tx.store.pools[id]; ok {
		return copyPool(p), nil
	}
	return nil, infra.WrapRepoErr("pool not found", nil, infra.KindNotFound)
}

func (r *txPoolRepo) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*capacity.Pool, error) {
	return r.find(id)
}

func (r *txPoolRepo) FindByIDForUpdate(_ context.Context, _ db.DBTX, id uuid.UUID) (*capacity.Pool, error) {
	return r.find(id)
}

func (r *txPoolRepo) Save(_ context.Context, _ db.DBTX, pool *capacity.Pool) error {
	r.tx.pools[pool.ID()] = copyPool(pool)
	return nil
}

type txReservationRepo struct {
	tx *tx
}

func (r *txReservationRepo) Create(_ context.Context, _ db.DBTX, res *reservation.Reservation) (uuid.UUID, error) {
	r.tx.reservations[res.ID()] = copyReservation(res)
	return res.ID(), nil
}

func (r *txReservationRepo) FindByIDForUpdate(_ context.Context, _ db.DBTX, id uuid.UUID) (*reservation.Reservation, error) {
	if res, ok := r.tx.reservations[id]; ok {
		return copyReservation(res), nil
	}
	if res, ok := r.tx.store.reservations[id]; ok {
		return copyReservation(res), nil
	}
	return nil, infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
}

func (r *txReservationRepo) UpdateStatus(_ context.Context, _ db.DBTX, res *reservation.Reservation, expected reservation.Status) error {
	current, ok := r.tx.store.reservations[res.ID()]
	if !ok {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	if current.Status() != expected {
		return infra.WrapRepoErr("status changed concurrently", nil, infra.KindConflict)
	}
	r.tx.reservations[res.ID()] = copyReservation(res)
	return nil
}

func (r *txReservationRepo) UpdateAttendance(_ context.Context, _ db.DBTX, res *reservation.Reservation) error {
	r.tx.reservations[res.ID()] = copyReservation(res)
	return nil
}

func (r *txReservationRepo) FindExpiredPendingIDs(_ context.Context, _ db.DBTX, now time.Time, limit int32) ([]uuid.UUID, error) {
	return expiredPendingIDs(r.tx.store, now, limit), nil
}

type txOverbookingRepo struct {
	tx *tx
}

func (r *txOverbookingRepo) Upsert(_ context.Context, _ db.DBTX, cfg *overbooking.Config) error {
	r.tx.configs[cfg.PoolID()] = copyConfig(cfg)
	return nil
}

func (r *txOverbookingRepo) FindByPoolID(_ context.Context, _ db.DBTX, poolID uuid.UUID) (*overbooking.Config, error) {
	if c, ok := r.tx.configs[poolID]; ok {
		return copyConfig(c), nil
	}
	if c, ok := r.tx.store.configs[poolID]; ok {
		return copyConfig(c), nil
	}
	return nil, nil
}

func (r *txOverbookingRepo) SaveRiskLevel(_ context.Context, _ db.DBTX, poolID uuid.UUID, level overbooking.RiskLevel) error {
	existing, err := r.FindByPoolID(nil, nil, poolID)
	if err != nil || existing == nil {
		return err
	}
	existing.SetRiskLevel(level)
	r.tx.configs[poolID] = existing
	return nil
}

type txNotificationRepo struct {
	tx *tx
}

func (r *txNotificationRepo) CreateJob(_ context.Context, _ db.DBTX, kind, topic string, payload []byte, runAt time.Time) error {
	r.tx.jobs = append(r.tx.jobs, Job{Kind: kind, Topic: topic, Payload: payload, RunAt: runAt})
	return nil
}

// --- standalone repositories ---

type idemRepo struct {
	store *Store
}

func (r *idemRepo) TryInsert(_ context.Context, _ db.DBTX, key, participantID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error) {
	r.store.idemMu.Lock()
	defer r.store.idemMu.Unlock()
	k := idemKey{key, participantID}
	if _, ok := r.store.idem[k]; ok {
		return false, nil
	}
	r.store.idem[k] = &repository.IdempotencyRecord{
		Key:           key,
		ParticipantID: participantID,
		Endpoint:      endpoint,
		RequestHash:   requestHash,
		Status:        "processing",
		ExpiresAt:     expiresAt,
	}
	return true, nil
}

func (r *idemRepo) Get(_ context.Context, _ db.DBTX, key, participantID uuid.UUID) (*repository.IdempotencyRecord, error) {
	r.store.idemMu.Lock()
	defer r.store.idemMu.Unlock()
	if rec, ok := r.store.idem[idemKey{key, participantID}]; ok {
		c := *rec
		return &c, nil
	}
	return nil, infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
}

func (r *idemRepo) MarkCompleted(_ context.Context, _ db.DBTX, key, participantID, reservationID uuid.UUID) error {
	r.store.idemMu.Lock()
	defer r.store.idemMu.Unlock()
	rec, ok := r.store.idem[idemKey{key, participantID}]
	if !ok {
		return infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	rec.Status = "completed"
	rec.ResultReservationID = &reservationID
	return nil
}

type reservationRepo struct {
	store *Store
}

func (r *reservationRepo) Create(_ context.Context, _ db.DBTX, res *reservation.Reservation) (uuid.UUID, error) {
	r.store.AddReservation(res)
	return res.ID(), nil
}

func (r *reservationRepo) FindByIDForUpdate(_ context.Context, _ db.DBTX, id uuid.UUID) (*reservation.Reservation, error) {
	if res := r.store.Reservation(id); res != nil {
		return res, nil
	}
	return nil, infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
}

func (r *reservationRepo) UpdateStatus(_ context.Context, _ db.DBTX, res *reservation.Reservation, expected reservation.Status) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	current, ok := r.store.reservations[res.ID()]
	if !ok {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	if current.Status() != expected {
		return infra.WrapRepoErr("status changed concurrently", nil, infra.KindConflict)
	}
	r.store.reservations[res.ID()] = copyReservation(res)
	return nil
}

func (r *reservationRepo) UpdateAttendance(_ context.Context, _ db.DBTX, res *reservation.Reservation) error {
	r.store.AddReservation(res)
	return nil
}

func (r *reservationRepo) FindExpiredPendingIDs(_ context.Context, _ db.DBTX, now time.Time, limit int32) ([]uuid.UUID, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return expiredPendingIDs(r.store, now, limit), nil
}

// caller holds store.mu
func expiredPendingIDs(s *Store, now time.Time, limit int32) []uuid.UUID {
	var ids []uuid.UUID
	for id, res := range s.reservations {
		if res.HoldExpired(now) {
			ids = append(ids, id)
			if int32(len(ids)) >= limit {
				break
			}
		}
	}
	return ids
}

// --- read model ---

type reservationQueries struct {
	store *Store
}

func (q *reservationQueries) GetByID(_ context.Context, id uuid.UUID) (*queries.ReservationView, error) {
	q.store.mu.Lock()
	defer q.store.mu.Unlock()
	res, ok := q.store.reservations[id]
	if !ok {
		return nil, infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return q.view(res), nil
}

func (q *reservationQueries) GetByParticipant(_ context.Context, participantID uuid.UUID) ([]*queries.ReservationView, error) {
	q.store.mu.Lock()
	defer q.store.mu.Unlock()
	var out []*queries.ReservationView
	for _, res := range q.store.reservations {
		if res.ParticipantID() == participantID {
			out = append(out, q.view(res))
		}
	}
	return out, nil
}

// caller holds store.mu
func (q *reservationQueries) view(res *reservation.Reservation) *queries.ReservationView {
	v := &queries.ReservationView{
		ID:              res.ID(),
		PoolID:          res.PoolID(),
		ParticipantID:   res.ParticipantID(),
		Status:          string(res.Status()),
		Attendance:      string(res.Attendance()),
		HoldExpiresAt:   res.HoldExpiresAt(),
		BasePriceCents:  res.BasePriceCents(),
		DiscountCents:   res.DiscountCents(),
		FinalPriceCents: res.FinalPriceCents(),
		Overbooked:      res.Overbooked(),
		CreatedAt:       res.CreatedAt(),
		StatusChangedAt: res.StatusChangedAt(),
	}
	if pool, ok := q.store.pools[res.PoolID()]; ok {
		v.ScopeID = pool.ScopeID()
		v.ScopeType = string(pool.ScopeType())
	}
	return v
}

// --- cache ---

type cache struct {
	store *Store
}

func (c *cache) Get(_ context.Context, _ uuid.UUID) (*queries.PoolAvailabilityView, error) {
	return nil, nil
}

func (c *cache) Set(_ context.Context, _ *queries.PoolAvailabilityView) error { return nil }

func (c *cache) Invalidate(_ context.Context, poolID uuid.UUID) error {
	c.store.cacheMu.Lock()
	defer c.store.cacheMu.Unlock()
	c.store.invalidations = append(c.store.invalidations, poolID)
	return nil
}

// --- copies ---

func copyPool(p *capacity.Pool) *capacity.Pool {
	if p == nil {
		return nil
	}
	var total *int32
	if p.Total() != nil {
		t := *p.Total()
		total = &t
	}
	var eventStart *time.Time
	if p.EventStart() != nil {
		e := *p.EventStart()
		eventStart = &e
	}
	return capacity.ReconstructPool(
		p.ID(), p.ScopeID(), p.ScopeType(),
		total, p.Available(), p.Blocked(), p.Confirmed(),
		eventStart, p.CreatedAt(), p.UpdatedAt(),
	)
}

func copyReservation(r *reservation.Reservation) *reservation.Reservation {
	if r == nil {
		return nil
	}
	var hold *time.Time
	if r.HoldExpiresAt() != nil {
		h := *r.HoldExpiresAt()
		hold = &h
	}
	return reservation.ReconstructReservation(
		r.ID(), r.PoolID(), r.ParticipantID(),
		r.Status(), r.Attendance(), hold,
		r.BasePriceCents(), r.DiscountCents(), r.Overbooked(),
		r.CreatedAt(), r.StatusChangedAt(),
	)
}

func copyConfig(c *overbooking.Config) *overbooking.Config {
	if c == nil {
		return nil
	}
	return overbooking.ReconstructConfig(
		c.PoolID(), c.MaxPercent(), c.RiskLevel(), c.IsActive(), c.AutoActions(),
		c.CreatedAt(), c.UpdatedAt(),
	)
}
