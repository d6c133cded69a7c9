// Package memstore is an in-memory implementation of the repository interfaces for service tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	gmodels "giveaway-settlement/internal/features/giveaway/models"
	grepo "giveaway-settlement/internal/features/giveaway/repository"
	pmodels "giveaway-settlement/internal/features/payments/models"
	prepo "giveaway-settlement/internal/features/payments/repository"
)

type Store struct {
	mu           sync.Mutex
	locks        map[string]*sync.Mutex
	giveaways    map[string]*gmodels.Giveaway
	participants map[int64]*gmodels.Participant
	transactions map[string]*pmodels.Transaction
	txnSeq       map[string]int64
	nextID       int64
	seq          int64

	// Errors makes the named operation fail, e.g. "ExpireEnded" or "SettleCredit".
	Errors map[string]error
}

func New() *Store {
	return &Store{
		locks:        make(map[string]*sync.Mutex),
		giveaways:    make(map[string]*gmodels.Giveaway),
		participants: make(map[int64]*gmodels.Participant),
		transactions: make(map[string]*pmodels.Transaction),
		txnSeq:       make(map[string]int64),
		Errors:       make(map[string]error),
	}
}

func (s *Store) fail(op string) error {
	return s.Errors[op]
}

func (s *Store) Giveaways() grepo.GiveawayRepository       { return giveawayRepo{s} }
func (s *Store) Participants() grepo.ParticipantRepository { return participantRepo{s} }
func (s *Store) Transactions() prepo.TransactionRepository { return transactionRepo{s} }

// AddGiveaway stores a copy of g.
func (s *Store) AddGiveaway(g gmodels.Giveaway) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.giveaways[g.ID] = &g
}

// AddParticipant stores a copy of p and returns its assigned id.
func (s *Store) AddParticipant(p gmodels.Participant) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p.ID = s.nextID
	s.participants[p.ID] = &p
	return p.ID
}

func (s *Store) AddTransaction(t pmodels.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addTransactionLocked(&t)
}

func (s *Store) addTransactionLocked(t *pmodels.Transaction) {
	s.seq++
	s.transactions[t.ID] = t
	s.txnSeq[t.ID] = s.seq
}

func (s *Store) Giveaway(id string) gmodels.Giveaway {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.giveaways[id]
}

func (s *Store) Participant(id int64) gmodels.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.participants[id]
}

func (s *Store) Transaction(id string) pmodels.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.transactions[id]
}

// ParticipantsOf returns the participants of a giveaway ordered by id.
func (s *Store) ParticipantsOf(giveawayID string) []gmodels.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.participantsLocked(func(p *gmodels.Participant) bool { return p.GiveawayID == giveawayID })
}

// TransactionsOf returns the transactions of a giveaway in insertion order.
func (s *Store) TransactionsOf(giveawayID string) []pmodels.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []pmodels.Transaction
	for _, t := range s.transactions {
		if t.GiveawayID == giveawayID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.txnSeq[out[i].ID] < s.txnSeq[out[j].ID] })
	return out
}

func (s *Store) participantsLocked(match func(*gmodels.Participant) bool) []gmodels.Participant {
	var out []gmodels.Participant
	for _, p := range s.participants {
		if match(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

type giveawayRepo struct{ s *Store }

func (r giveawayRepo) Create(_ context.Context, g *gmodels.Giveaway) error {
	if err := r.s.fail("CreateGiveaway"); err != nil {
		return err
	}
	r.s.AddGiveaway(*g)
	return nil
}

func (r giveawayRepo) GetByID(_ context.Context, id string) (*gmodels.Giveaway, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.giveaways[id]
	if !ok {
		return nil, grepo.ErrGiveawayNotFound
	}
	cp := *g
	return &cp, nil
}

func (r giveawayRepo) ExpireEnded(_ context.Context, now time.Time) (int64, error) {
	if err := r.s.fail("ExpireEnded"); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, g := range r.s.giveaways {
		if g.Status != gmodels.GiveawayStatusEnded && !g.EndAt.After(now) {
			g.Status = gmodels.GiveawayStatusEnded
			n++
		}
	}
	return n, nil
}

func (r giveawayRepo) ListAwaitingWinners(_ context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []string
	for _, g := range r.s.giveaways {
		if g.Status == gmodels.GiveawayStatusEnded && !g.HasWinners {
			ids = append(ids, g.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r giveawayRepo) ListAwaitingPayout(_ context.Context) ([]gmodels.Giveaway, error) {
	if err := r.s.fail("ListAwaitingPayout"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []gmodels.Giveaway
	for _, g := range r.s.giveaways {
		if g.Status == gmodels.GiveawayStatusEnded && g.HasWinners && !g.PaidWinners {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r giveawayRepo) MarkPaidWhenSettled(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, g := range r.s.giveaways {
		if g.Status != gmodels.GiveawayStatusEnded || !g.HasWinners || g.PaidWinners {
			continue
		}
		winners, unpaid := 0, 0
		for _, p := range r.s.participants {
			if p.GiveawayID == g.ID && p.IsWinner {
				winners++
				if !p.IsPaid {
					unpaid++
				}
			}
		}
		if winners > 0 && unpaid == 0 {
			g.PaidWinners = true
			n++
		}
	}
	return n, nil
}

func (r giveawayRepo) BeginWinnerSelection(ctx context.Context, id string) (grepo.WinnerSelectionTx, error) {
	if err := r.s.fail("BeginWinnerSelection"); err != nil {
		return nil, err
	}
	lock := r.s.lockFor(id)
	lock.Lock()
	g, err := r.GetByID(ctx, id)
	if err != nil {
		lock.Unlock()
		return nil, err
	}
	return &selectionTx{s: r.s, lock: lock, giveaway: g}, nil
}

// selectionTx holds the per-giveaway lock until Commit or Rollback and applies staged winners on Commit.
type selectionTx struct {
	s        *Store
	lock     *sync.Mutex
	giveaway *gmodels.Giveaway
	winners  []int64
	marked   bool
	done     bool
}

func (t *selectionTx) Giveaway() *gmodels.Giveaway { return t.giveaway }

func (t *selectionTx) HasSuccessfulTopUp(_ context.Context) (bool, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for _, txn := range t.s.transactions {
		if txn.GiveawayID == t.giveaway.ID && txn.IsTopUp() && txn.Status == pmodels.TransactionStatusSuccess {
			return true, nil
		}
	}
	return false, nil
}

func (t *selectionTx) EligibleParticipants(_ context.Context) ([]gmodels.Participant, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.s.participantsLocked(func(p *gmodels.Participant) bool {
		return p.GiveawayID == t.giveaway.ID && p.IsEligible
	}), nil
}

func (t *selectionTx) MarkWinners(_ context.Context, ids []int64) error {
	if err := t.s.fail("MarkWinners"); err != nil {
		return err
	}
	t.winners = append([]int64(nil), ids...)
	t.marked = true
	t.giveaway.HasWinners = true
	return nil
}

func (t *selectionTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	defer t.lock.Unlock()
	if err := t.s.fail("CommitWinners"); err != nil {
		return err
	}
	if !t.marked {
		return nil
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for _, id := range t.winners {
		if p, ok := t.s.participants[id]; ok && p.GiveawayID == t.giveaway.ID {
			p.IsWinner = true
		}
	}
	t.s.giveaways[t.giveaway.ID].HasWinners = true
	return nil
}

func (t *selectionTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.lock.Unlock()
	return nil
}

type participantRepo struct{ s *Store }

func (r participantRepo) Create(_ context.Context, p *gmodels.Participant) error {
	if err := r.s.fail("CreateParticipant"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.giveaways[p.GiveawayID]
	if !ok {
		return grepo.ErrGiveawayNotFound
	}
	count := 0
	for _, existing := range r.s.participants {
		if existing.GiveawayID != p.GiveawayID {
			continue
		}
		count++
		if existing.AccountNumber == p.AccountNumber {
			return grepo.ErrDuplicateParticipant
		}
	}
	if count >= g.NumberOfParticipants {
		return grepo.ErrGiveawayFull
	}
	r.s.nextID++
	p.ID = r.s.nextID
	cp := *p
	r.s.participants[p.ID] = &cp
	return nil
}

func (r participantRepo) CountByGiveaway(_ context.Context, giveawayID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, p := range r.s.participants {
		if p.GiveawayID == giveawayID {
			n++
		}
	}
	return n, nil
}

func (r participantRepo) GetByAccount(_ context.Context, giveawayID, accountNumber string) (*gmodels.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.participants {
		if p.GiveawayID == giveawayID && p.AccountNumber == accountNumber {
			cp := *p
			return &cp, nil
		}
	}
	return nil, grepo.ErrParticipantNotFound
}

func (r participantRepo) MarkEligible(_ context.Context, giveawayID, accountNumber string) (bool, error) {
	if err := r.s.fail("MarkEligible"); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.participants {
		if p.GiveawayID == giveawayID && p.AccountNumber == accountNumber && !p.IsEligible {
			p.IsEligible = true
			return true, nil
		}
	}
	return false, nil
}

func (r participantRepo) ListWinners(_ context.Context, giveawayID string) ([]gmodels.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.participantsLocked(func(p *gmodels.Participant) bool {
		return p.GiveawayID == giveawayID && p.IsWinner
	}), nil
}

func (r participantRepo) ListWinnersWithoutRecipient(_ context.Context, limit int) ([]gmodels.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.s.participantsLocked(func(p *gmodels.Participant) bool {
		return p.IsWinner && !p.IsPaid && p.RecipientCode == nil
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r participantRepo) SetRecipientCode(_ context.Context, participantID int64, code string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participants[participantID]
	if !ok {
		return grepo.ErrParticipantNotFound
	}
	p.RecipientCode = &code
	return nil
}

type transactionRepo struct{ s *Store }

func (r transactionRepo) Create(_ context.Context, t *pmodels.Transaction) error {
	if err := r.s.fail("CreateTransaction"); err != nil {
		return err
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *t
	r.s.addTransactionLocked(&cp)
	return nil
}

func (r transactionRepo) GetByID(_ context.Context, id string) (*pmodels.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transactions[id]
	if !ok {
		return nil, prepo.ErrTransactionNotFound
	}
	cp := *t
	return &cp, nil
}

func (r transactionRepo) transitionLocked(id string, from []pmodels.TransactionStatus, to pmodels.TransactionStatus, resp *string) bool {
	t, ok := r.s.transactions[id]
	if !ok {
		return false
	}
	for _, f := range from {
		if t.Status == f {
			t.Status = to
			if resp != nil {
				v := *resp
				t.GatewayResponse = &v
			}
			return true
		}
	}
	return false
}

func (r transactionRepo) Transition(_ context.Context, id string, from []pmodels.TransactionStatus, to pmodels.TransactionStatus, resp *string) (bool, error) {
	if err := r.s.fail("Transition"); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.transitionLocked(id, from, to, resp), nil
}

var settleable = []pmodels.TransactionStatus{pmodels.TransactionStatusInitiated, pmodels.TransactionStatusPending}

func (r transactionRepo) SettleTopUp(_ context.Context, id string, resp *string) (bool, error) {
	if err := r.s.fail("SettleTopUp"); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.transitionLocked(id, settleable, pmodels.TransactionStatusSuccess, resp) {
		return false, nil
	}
	if g, ok := r.s.giveaways[r.s.transactions[id].GiveawayID]; ok && g.Status == gmodels.GiveawayStatusCreated {
		g.Status = gmodels.GiveawayStatusActive
	}
	return true, nil
}

func (r transactionRepo) SettleCredit(_ context.Context, id string, resp *string) (bool, error) {
	if err := r.s.fail("SettleCredit"); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.transitionLocked(id, settleable, pmodels.TransactionStatusSuccess, resp) {
		return false, nil
	}
	if pid := r.s.transactions[id].ParticipantID; pid != nil {
		if p, ok := r.s.participants[*pid]; ok {
			p.IsPaid = true
		}
	}
	return true, nil
}

// creditRank orders credits the way the postgres query does: blocking statuses first.
func creditRank(status pmodels.TransactionStatus) int {
	switch status {
	case pmodels.TransactionStatusSuccess, pmodels.TransactionStatusPending:
		return 0
	case pmodels.TransactionStatusInitiated:
		return 1
	default:
		return 2
	}
}

func (r transactionRepo) PayoutCredits(_ context.Context, giveawayID string) (map[int64]pmodels.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[int64]pmodels.Transaction)
	for id, t := range r.s.transactions {
		if t.GiveawayID != giveawayID || t.ParticipantID == nil || !strings.HasPrefix(t.Narration, pmodels.NarrationCreditPrefix) {
			continue
		}
		pid := *t.ParticipantID
		cur, ok := out[pid]
		if ok {
			rank, curRank := creditRank(t.Status), creditRank(cur.Status)
			if rank > curRank || (rank == curRank && r.s.txnSeq[id] < r.s.txnSeq[cur.ID]) {
				continue
			}
		}
		out[pid] = *t
	}
	return out, nil
}
