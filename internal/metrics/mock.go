package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                sync.Mutex
	joins             map[string]int
	leaves            map[string]int
	refunded          int64
	withdrawals       map[string]int
	gatewayCalls      map[string]int
	compensations     map[string]int
	statusTransitions map[string]int
	processorRuns     map[string]int
	slackNotifSent    int
	slackNotifFailed  int
	startupTime       float64
}

var _ Metrics = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		joins:             make(map[string]int),
		leaves:            make(map[string]int),
		withdrawals:       make(map[string]int),
		gatewayCalls:      make(map[string]int),
		compensations:     make(map[string]int),
		statusTransitions: make(map[string]int),
		processorRuns:     make(map[string]int),
	}
}

func (m *Mock) IncJoin(method, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.joins[method+"/"+outcome]++
}

func (m *Mock) IncLeave(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaves[outcome]++
}

func (m *Mock) AddRefunded(amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refunded += amount
}

func (m *Mock) IncWithdrawal(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.withdrawals[outcome]++
}

func (m *Mock) ObserveGatewayDuration(operation string, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gatewayCalls[operation]++
}

func (m *Mock) IncCompensation(kind, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.compensations[kind+"/"+outcome]++
}

func (m *Mock) IncStatusTransition(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusTransitions[status]++
}

func (m *Mock) IncProcessorRuns(job string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processorRuns[job]++
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// Joins returns how often IncJoin was called with the given labels.
func (m *Mock) Joins(method, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.joins[method+"/"+outcome]
}

// Leaves returns how often IncLeave was called with the given outcome.
func (m *Mock) Leaves(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leaves[outcome]
}

// Refunded returns the total passed to AddRefunded.
func (m *Mock) Refunded() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refunded
}

// Withdrawals returns how often IncWithdrawal was called with the given outcome.
func (m *Mock) Withdrawals(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.withdrawals[outcome]
}

// GatewayCalls returns how many gateway durations were observed for an operation.
func (m *Mock) GatewayCalls(operation string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gatewayCalls[operation]
}

// Compensations returns how often IncCompensation was called with the given labels.
func (m *Mock) Compensations(kind, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.compensations[kind+"/"+outcome]
}

// StatusTransitions returns how often IncStatusTransition was called for a status.
func (m *Mock) StatusTransitions(status string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusTransitions[status]
}

// ProcessorRuns returns how often IncProcessorRuns was called for a job.
func (m *Mock) ProcessorRuns(job string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.processorRuns[job]
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
