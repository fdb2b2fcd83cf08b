package ledger

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"admitdesk/internal/models"
	"admitdesk/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore backs the in-memory fakes. ExecuteInTransaction holds the mutex
// for the whole unit of work, mirroring the row locks the real repository
// takes, and restores a snapshot on error, mirroring rollback.
type fakeStore struct {
	mu             sync.Mutex
	centers        map[uint]*models.Center
	recharges      map[uint]*models.RechargeRequest
	events         []models.LedgerEvent
	nextRechargeID uint
	nextEventID    uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		centers:        make(map[uint]*models.Center),
		recharges:      make(map[uint]*models.RechargeRequest),
		nextRechargeID: 1,
		nextEventID:    1,
	}
}

func (s *fakeStore) addCenter(id uint, code, name string, balance float64) {
	s.centers[id] = &models.Center{ID: id, Code: code, Name: name, WalletBalance: balance}
}

func (s *fakeStore) snapshot() *fakeStore {
	cp := newFakeStore()
	cp.nextRechargeID = s.nextRechargeID
	cp.nextEventID = s.nextEventID
	for id, c := range s.centers {
		cc := *c
		cp.centers[id] = &cc
	}
	for id, r := range s.recharges {
		rc := *r
		cp.recharges[id] = &rc
	}
	cp.events = append(cp.events, s.events...)
	return cp
}

func (s *fakeStore) restore(snap *fakeStore) {
	s.centers = snap.centers
	s.recharges = snap.recharges
	s.events = snap.events
	s.nextRechargeID = snap.nextRechargeID
	s.nextEventID = snap.nextEventID
}

type fakeLedgerRepo struct {
	store *fakeStore
	inTx  bool
}

func (r *fakeLedgerRepo) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *fakeLedgerRepo) CreateRecharge(req *models.RechargeRequest) error {
	defer r.lock()()
	req.ID = r.store.nextRechargeID
	r.store.nextRechargeID++
	cp := *req
	r.store.recharges[req.ID] = &cp
	return nil
}

func (r *fakeLedgerRepo) GetRechargeByID(id uint) (*models.RechargeRequest, error) {
	defer r.lock()()
	req, ok := r.store.recharges[id]
	if !ok {
		return nil, repositories.ErrRechargeNotFound
	}
	cp := *req
	return &cp, nil
}

func (r *fakeLedgerRepo) GetRechargeForUpdate(id uint) (*models.RechargeRequest, error) {
	return r.GetRechargeByID(id)
}

func (r *fakeLedgerRepo) ListRecharges(filter repositories.RechargeFilter) ([]models.RechargeRequest, error) {
	defer r.lock()()
	var out []models.RechargeRequest
	for _, req := range r.store.recharges {
		if filter.CenterID != 0 && req.CenterID != filter.CenterID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		out = append(out, *req)
	}
	return out, nil
}

func (r *fakeLedgerRepo) UpdateRechargeStatus(id uint, status models.RechargeStatus, reviewerID uint) error {
	defer r.lock()()
	req, ok := r.store.recharges[id]
	if !ok {
		return repositories.ErrRechargeNotFound
	}
	req.Status = status
	req.ReviewedBy = &reviewerID
	return nil
}

func (r *fakeLedgerRepo) GetCenterForUpdate(id uint) (*models.Center, error) {
	defer r.lock()()
	center, ok := r.store.centers[id]
	if !ok {
		return nil, repositories.ErrCenterNotFound
	}
	cp := *center
	return &cp, nil
}

func (r *fakeLedgerRepo) AdjustCenterBalance(centerID uint, delta float64) (float64, error) {
	defer r.lock()()
	center, ok := r.store.centers[centerID]
	if !ok {
		return 0, repositories.ErrCenterNotFound
	}
	center.WalletBalance += delta
	if center.WalletBalance < 0 {
		center.WalletBalance = 0
	}
	return center.WalletBalance, nil
}

func (r *fakeLedgerRepo) DebitCenterBalance(centerID uint, amount float64) error {
	defer r.lock()()
	center, ok := r.store.centers[centerID]
	if !ok {
		return repositories.ErrCenterNotFound
	}
	if center.WalletBalance < amount {
		return repositories.ErrInsufficientFunds
	}
	center.WalletBalance -= amount
	return nil
}

func (r *fakeLedgerRepo) AppendEvent(ev *models.LedgerEvent) error {
	defer r.lock()()
	ev.ID = r.store.nextEventID
	r.store.nextEventID++
	r.store.events = append(r.store.events, *ev)
	return nil
}

func (r *fakeLedgerRepo) ListEvents(requestID uint) ([]models.LedgerEvent, error) {
	defer r.lock()()
	var out []models.LedgerEvent
	for _, ev := range r.store.events {
		if ev.RequestID != nil && *ev.RequestID == requestID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *fakeLedgerRepo) ListCenterEvents(centerID uint) ([]models.LedgerEvent, error) {
	defer r.lock()()
	var out []models.LedgerEvent
	for _, ev := range r.store.events {
		if ev.CenterID == centerID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *fakeLedgerRepo) SumApproved(centerID uint) (float64, error) {
	defer r.lock()()
	var total float64
	for _, req := range r.store.recharges {
		if req.CenterID == centerID && req.Status == models.StatusApproved {
			total += req.Amount
		}
	}
	return total, nil
}

func (r *fakeLedgerRepo) SumEnrollmentDebits(centerID uint) (float64, error) {
	defer r.lock()()
	var total float64
	for _, ev := range r.store.events {
		if ev.CenterID == centerID && ev.Kind == models.EventEnrollmentDebit {
			total += -ev.AppliedDelta
		}
	}
	return total, nil
}

func (r *fakeLedgerRepo) ExecuteInTransaction(fn func(repositories.LedgerRepository) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	snap := r.store.snapshot()
	if err := fn(&fakeLedgerRepo{store: r.store, inTx: true}); err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}

type fakeCenterRepo struct {
	store *fakeStore
}

func (r *fakeCenterRepo) Create(center *models.Center) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *center
	r.store.centers[center.ID] = &cp
	return nil
}

func (r *fakeCenterRepo) GetByID(id uint) (*models.Center, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	center, ok := r.store.centers[id]
	if !ok {
		return nil, repositories.ErrCenterNotFound
	}
	cp := *center
	return &cp, nil
}

func (r *fakeCenterRepo) GetByCode(code string) (*models.Center, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, center := range r.store.centers {
		if center.Code == code {
			cp := *center
			return &cp, nil
		}
	}
	return nil, repositories.ErrCenterNotFound
}

func (r *fakeCenterRepo) List() ([]models.Center, error) { return nil, nil }

func (r *fakeCenterRepo) ListSummaries() ([]models.CenterSummary, error) { return nil, nil }

func (r *fakeCenterRepo) UpdateFlags(id uint, status, subCenterAccess bool) (*models.Center, error) {
	return nil, nil
}

func newTestService(store *fakeStore) Service {
	return NewService(&fakeLedgerRepo{store: store}, &fakeCenterRepo{store: store}, nil)
}

func superadmin() *models.UserClaims {
	return &models.UserClaims{UserID: 1, Role: models.RoleSuperadmin}
}

func centerAdmin(centerID uint) *models.UserClaims {
	return &models.UserClaims{UserID: 10 + centerID, Role: models.RoleAdmin, CenterID: centerID}
}

func submission(code string, amount float64) SubmitInput {
	return SubmitInput{
		CenterCode:    code,
		Amount:        amount,
		PaySlip:       "slip.png",
		TransactionID: "TXN-1",
		PaymentType:   "NEFT",
	}
}

func balanceOf(t *testing.T, store *fakeStore, centerID uint) float64 {
	t.Helper()
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.centers[centerID].WalletBalance
}

func TestSubmitRecharge(t *testing.T) {
	ctx := context.Background()

	t.Run("pending submission leaves balance untouched", func(t *testing.T) {
		store := newFakeStore()
		store.addCenter(1, "1001", "North Center", 0)
		svc := newTestService(store)

		req, err := svc.SubmitRecharge(ctx, centerAdmin(1), submission("1001", 500))
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, req.Status)
		assert.Equal(t, "1001", req.CenterCode)
		assert.Equal(t, "North Center", req.CenterName)
		assert.Equal(t, float64(0), balanceOf(t, store, 1))
	})

	t.Run("rejects non-positive amounts without creating a record", func(t *testing.T) {
		store := newFakeStore()
		store.addCenter(1, "1001", "North Center", 0)
		svc := newTestService(store)

		for _, amount := range []float64{0, -50} {
			_, err := svc.SubmitRecharge(ctx, centerAdmin(1), submission("1001", amount))
			assert.ErrorIs(t, err, ErrInvalidAmount)
		}
		assert.Empty(t, store.recharges)
	})

	t.Run("rejects missing evidence", func(t *testing.T) {
		store := newFakeStore()
		store.addCenter(1, "1001", "North Center", 0)
		svc := newTestService(store)

		in := submission("1001", 100)
		in.PaySlip = ""
		_, err := svc.SubmitRecharge(ctx, centerAdmin(1), in)
		assert.ErrorIs(t, err, ErrMissingEvidence)
	})

	t.Run("rejects unknown center code", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestService(store)

		_, err := svc.SubmitRecharge(ctx, superadmin(), submission("9999", 100))
		assert.ErrorIs(t, err, ErrCenterNotFound)
	})

	t.Run("admin cannot submit for another center", func(t *testing.T) {
		store := newFakeStore()
		store.addCenter(1, "1001", "North Center", 0)
		store.addCenter(2, "2002", "South Center", 0)
		svc := newTestService(store)

		_, err := svc.SubmitRecharge(ctx, centerAdmin(2), submission("1001", 100))
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestTransitionStatus(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, amount float64) (*fakeStore, Service, uint) {
		t.Helper()
		store := newFakeStore()
		store.addCenter(1, "1001", "North Center", 0)
		svc := newTestService(store)
		req, err := svc.SubmitRecharge(ctx, centerAdmin(1), submission("1001", amount))
		require.NoError(t, err)
		return store, svc, req.ID
	}

	t.Run("approval credits the balance", func(t *testing.T) {
		store, svc, id := setup(t, 500)

		req, err := svc.TransitionStatus(ctx, superadmin(), id, models.StatusApproved)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, req.Status)
		assert.NotNil(t, req.ReviewedBy)
		assert.Equal(t, float64(500), balanceOf(t, store, 1))
	})

	t.Run("re-approving is a no-op on the balance", func(t *testing.T) {
		store, svc, id := setup(t, 500)

		_, err := svc.TransitionStatus(ctx, superadmin(), id, models.StatusApproved)
		require.NoError(t, err)
		_, err = svc.TransitionStatus(ctx, superadmin(), id, models.StatusApproved)
		require.NoError(t, err)
		assert.Equal(t, float64(500), balanceOf(t, store, 1))
	})

	t.Run("approve then reject returns the balance to zero", func(t *testing.T) {
		store, svc, id := setup(t, 500)

		_, err := svc.TransitionStatus(ctx, superadmin(), id, models.StatusApproved)
		require.NoError(t, err)
		_, err = svc.TransitionStatus(ctx, superadmin(), id, models.StatusRejected)
		require.NoError(t, err)
		assert.Equal(t, float64(0), balanceOf(t, store, 1))
	})

	t.Run("approve reject approve is symmetric", func(t *testing.T) {
		store, svc, id := setup(t, 500)

		for _, status := range []models.RechargeStatus{models.StatusApproved, models.StatusRejected, models.StatusApproved} {
			_, err := svc.TransitionStatus(ctx, superadmin(), id, status)
			require.NoError(t, err)
		}
		assert.Equal(t, float64(500), balanceOf(t, store, 1))
	})

	t.Run("two approvals and one rejection across requests", func(t *testing.T) {
		store := newFakeStore()
		store.addCenter(1, "1001", "North Center", 0)
		svc := newTestService(store)

		small, err := svc.SubmitRecharge(ctx, centerAdmin(1), submission("1001", 300))
		require.NoError(t, err)
		big, err := svc.SubmitRecharge(ctx, centerAdmin(1), submission("1001", 700))
		require.NoError(t, err)

		_, err = svc.TransitionStatus(ctx, superadmin(), small.ID, models.StatusApproved)
		require.NoError(t, err)
		_, err = svc.TransitionStatus(ctx, superadmin(), big.ID, models.StatusApproved)
		require.NoError(t, err)
		assert.Equal(t, float64(1000), balanceOf(t, store, 1))

		_, err = svc.TransitionStatus(ctx, superadmin(), small.ID, models.StatusRejected)
		require.NoError(t, err)
		assert.Equal(t, float64(700), balanceOf(t, store, 1))
	})

	t.Run("reversal clamps at zero after an external debit", func(t *testing.T) {
		store, svc, id := setup(t, 500)

		_, err := svc.TransitionStatus(ctx, superadmin(), id, models.StatusApproved)
		require.NoError(t, err)
		require.NoError(t, svc.ChargeEnrollment(ctx, 1, 300, 1, "enrollment"))
		require.Equal(t, float64(200), balanceOf(t, store, 1))

		_, err = svc.TransitionStatus(ctx, superadmin(), id, models.StatusRejected)
		require.NoError(t, err)
		assert.Equal(t, float64(0), balanceOf(t, store, 1))

		events, err := svc.ListEvents(ctx, superadmin(), id)
		require.NoError(t, err)
		last := events[len(events)-1]
		assert.Equal(t, float64(-200), last.AppliedDelta)
		assert.Equal(t, float64(300), last.ClampedDelta)
	})

	t.Run("non-superadmin callers are forbidden", func(t *testing.T) {
		store, svc, id := setup(t, 500)

		_, err := svc.TransitionStatus(ctx, centerAdmin(1), id, models.StatusApproved)
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Equal(t, float64(0), balanceOf(t, store, 1))
	})

	t.Run("invalid status is rejected", func(t *testing.T) {
		_, svc, id := setup(t, 500)

		_, err := svc.TransitionStatus(ctx, superadmin(), id, models.RechargeStatus("Cancelled"))
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("unknown request", func(t *testing.T) {
		store := newFakeStore()
		store.addCenter(1, "1001", "North Center", 0)
		svc := newTestService(store)

		_, err := svc.TransitionStatus(ctx, superadmin(), 42, models.StatusApproved)
		assert.ErrorIs(t, err, ErrRequestNotFound)
	})
}

func TestConcurrentApprovals(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addCenter(1, "1001", "North Center", 0)
	svc := newTestService(store)

	first, err := svc.SubmitRecharge(ctx, centerAdmin(1), submission("1001", 100))
	require.NoError(t, err)
	second, err := svc.SubmitRecharge(ctx, centerAdmin(1), submission("1001", 100))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, id := range []uint{first.ID, second.ID} {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			_, err := svc.TransitionStatus(ctx, superadmin(), id, models.StatusApproved)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	assert.Equal(t, float64(200), balanceOf(t, store, 1))
}

func TestBalanceInvariant(t *testing.T) {
	// Random interleavings of submissions and transitions. With recharges
	// as the only ledger source the clamp can never fire, so the stored
	// balance must always equal the sum of currently approved amounts.
	ctx := context.Background()
	store := newFakeStore()
	store.addCenter(1, "1001", "North Center", 0)
	svc := newTestService(store)

	rng := rand.New(rand.NewSource(1))
	statuses := []models.RechargeStatus{models.StatusPending, models.StatusApproved, models.StatusRejected}
	var ids []uint

	for i := 0; i < 300; i++ {
		if len(ids) == 0 || rng.Intn(4) == 0 {
			amount := float64(rng.Intn(900) + 100)
			req, err := svc.SubmitRecharge(ctx, centerAdmin(1), submission("1001", amount))
			require.NoError(t, err)
			ids = append(ids, req.ID)
		} else {
			id := ids[rng.Intn(len(ids))]
			_, err := svc.TransitionStatus(ctx, superadmin(), id, statuses[rng.Intn(len(statuses))])
			require.NoError(t, err)
		}

		repo := &fakeLedgerRepo{store: store}
		approved, err := repo.SumApproved(1)
		require.NoError(t, err)
		require.Equal(t, approved, balanceOf(t, store, 1), "step %d", i)
	}

	report, err := svc.Reconcile(ctx, superadmin(), 1)
	require.NoError(t, err)
	assert.Equal(t, float64(0), report.Drift)
}

func TestChargeEnrollment(t *testing.T) {
	ctx := context.Background()

	t.Run("debits the fee and records an event", func(t *testing.T) {
		store := newFakeStore()
		store.addCenter(1, "1001", "North Center", 1000)
		svc := newTestService(store)

		require.NoError(t, svc.ChargeEnrollment(ctx, 1, 250, 1, "student 7"))
		assert.Equal(t, float64(750), balanceOf(t, store, 1))

		events, err := (&fakeLedgerRepo{store: store}).ListCenterEvents(1)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, models.EventEnrollmentDebit, events[0].Kind)
		assert.Equal(t, float64(-250), events[0].AppliedDelta)
	})

	t.Run("fails rather than clamping when underfunded", func(t *testing.T) {
		store := newFakeStore()
		store.addCenter(1, "1001", "North Center", 100)
		svc := newTestService(store)

		err := svc.ChargeEnrollment(ctx, 1, 250, 1, "student 7")
		assert.ErrorIs(t, err, ErrInsufficientBalance)
		assert.Equal(t, float64(100), balanceOf(t, store, 1))
	})
}

func TestListRecharges(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addCenter(1, "1001", "North Center", 0)
	store.addCenter(2, "2002", "South Center", 0)
	svc := newTestService(store)

	_, err := svc.SubmitRecharge(ctx, centerAdmin(1), submission("1001", 100))
	require.NoError(t, err)
	_, err = svc.SubmitRecharge(ctx, centerAdmin(2), submission("2002", 200))
	require.NoError(t, err)

	t.Run("center admin sees only their own center", func(t *testing.T) {
		reqs, err := svc.ListRecharges(ctx, centerAdmin(1), 2)
		require.NoError(t, err)
		require.Len(t, reqs, 1)
		assert.Equal(t, uint(1), reqs[0].CenterID)
	})

	t.Run("superadmin sees everything", func(t *testing.T) {
		reqs, err := svc.ListRecharges(ctx, superadmin(), 0)
		require.NoError(t, err)
		assert.Len(t, reqs, 2)
	})

	t.Run("superadmin can filter by center", func(t *testing.T) {
		reqs, err := svc.ListRecharges(ctx, superadmin(), 2)
		require.NoError(t, err)
		require.Len(t, reqs, 1)
		assert.Equal(t, uint(2), reqs[0].CenterID)
	})
}

func TestSeedBalance(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addCenter(1, "1001", "North Center", 0)
	svc := newTestService(store)

	t.Run("creates an approved evidence-free row and credits it", func(t *testing.T) {
		req, err := svc.SeedBalance(ctx, superadmin(), 1, 1500)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, req.Status)
		assert.Empty(t, req.PaySlip)
		assert.Equal(t, float64(1500), balanceOf(t, store, 1))

		report, err := svc.Reconcile(ctx, superadmin(), 1)
		require.NoError(t, err)
		assert.Equal(t, float64(0), report.Drift)
	})

	t.Run("only superadmins may seed", func(t *testing.T) {
		_, err := svc.SeedBalance(ctx, centerAdmin(1), 1, 100)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestListEventsAuthorization(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addCenter(1, "1001", "North Center", 0)
	svc := newTestService(store)

	req, err := svc.SubmitRecharge(ctx, centerAdmin(1), submission("1001", 100))
	require.NoError(t, err)

	_, err = svc.ListEvents(ctx, centerAdmin(1), req.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	events, err := svc.ListEvents(ctx, superadmin(), req.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventRequestCreated, events[0].Kind)
}

func TestReconcileUnknownCenter(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	_, err := svc.Reconcile(context.Background(), superadmin(), 9)
	assert.ErrorIs(t, err, ErrCenterNotFound)
}

func ExampleService_TransitionStatus() {
	store := newFakeStore()
	store.addCenter(1, "1001", "North Center", 0)
	svc := newTestService(store)

	caller := &models.UserClaims{UserID: 7, Role: models.RoleAdmin, CenterID: 1}
	req, _ := svc.SubmitRecharge(context.Background(), caller, SubmitInput{
		CenterCode: "1001", Amount: 500, PaySlip: "slip.png",
	})
	moderator := &models.UserClaims{UserID: 1, Role: models.RoleSuperadmin}
	updated, _ := svc.TransitionStatus(context.Background(), moderator, req.ID, models.StatusApproved)
	fmt.Println(updated.Status)
	// Output: Approved
}
