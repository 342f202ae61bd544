// Package status tracks the live view of the current run: job state,
// per-retailer progress, product counts and a bounded activity log.
package status

import (
	"sync"
	"time"
)

// State is the lifecycle state of the run.
type State string

const (
	StateIdle      State = "idle"
	StateStarting  State = "starting"
	StateRunning   State = "running"
	StateStopping  State = "stopping"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Terminal reports whether the state is an end state.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// RetailerStatus is the per-retailer slice of the run.
type RetailerStatus struct {
	State         string  `json:"state"` // pending, running, completed, failed
	ProductsFound int     `json:"products_found"`
	PagesScraped  int     `json:"pages_scraped"`
	Progress      float64 `json:"progress"`
	Error         string  `json:"error,omitempty"`
}

type LogEntry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
}

// Report is the copied-out status view handed to callers. Mutating it never
// affects the reporter. Progress values are percentages in [0, 100];
// internally the reporter tracks fractions.
type Report struct {
	JobID         string                    `json:"job_id,omitempty"`
	State         State                     `json:"state"`
	Region        string                    `json:"region,omitempty"`
	Retailers     []string                  `json:"retailers,omitempty"`
	Genders       []string                  `json:"genders,omitempty"`
	StartedAt     *time.Time                `json:"started_at,omitempty"`
	FinishedAt    *time.Time                `json:"finished_at,omitempty"`
	Progress      float64                   `json:"progress"`
	ProductsFound int                       `json:"products_found"`
	RetailerState map[string]RetailerStatus `json:"retailer_state,omitempty"`
	SnapshotName  string                    `json:"snapshot_name,omitempty"`
	Error         string                    `json:"error,omitempty"`
	RecentLog     []LogEntry                `json:"recent_log,omitempty"`
}

const maxLogEntries = 200

// Reporter aggregates progress updates from concurrent retailer tasks.
// Overall progress is the mean of per-retailer fractions and never moves
// backwards within a run.
type Reporter struct {
	mu sync.RWMutex

	jobID      string
	state      State
	region     string
	retailers  []string
	genders    []string
	startedAt  *time.Time
	finishedAt *time.Time

	progress      float64
	productsFound int
	perRetailer   map[string]*RetailerStatus
	snapshotName  string
	errMsg        string
	log           []LogEntry
}

func NewReporter() *Reporter {
	return &Reporter{
		state:       StateIdle,
		perRetailer: make(map[string]*RetailerStatus),
	}
}

// Begin resets the reporter for a new run.
func (r *Reporter) Begin(jobID, region string, retailers, genders []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.jobID = jobID
	r.state = StateStarting
	r.region = region
	r.retailers = append([]string(nil), retailers...)
	r.genders = append([]string(nil), genders...)
	r.startedAt = &now
	r.finishedAt = nil
	r.progress = 0
	r.productsFound = 0
	r.snapshotName = ""
	r.errMsg = ""
	r.log = nil

	r.perRetailer = make(map[string]*RetailerStatus, len(retailers))
	for _, key := range retailers {
		r.perRetailer[key] = &RetailerStatus{State: "pending"}
	}
}

func (r *Reporter) SetState(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = s
	if s.Terminal() {
		now := time.Now()
		r.finishedAt = &now
		if s == StateCompleted {
			r.progress = 1
		}
	}
}

func (r *Reporter) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

func (r *Reporter) RetailerStarted(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rs, ok := r.perRetailer[key]; ok {
		rs.State = "running"
	}
}

// RetailerProgress records the completion fraction of one retailer task and
// recomputes overall progress. The clamp keeps the aggregate monotonic even
// when a retailer restarts a page sequence.
func (r *Reporter) RetailerProgress(key string, fraction float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs, ok := r.perRetailer[key]
	if !ok {
		return
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	if fraction > rs.Progress {
		rs.Progress = fraction
	}
	r.recalcProgress()
}

func (r *Reporter) recalcProgress() {
	if len(r.retailers) == 0 {
		return
	}
	var sum float64
	for _, key := range r.retailers {
		if rs, ok := r.perRetailer[key]; ok {
			sum += rs.Progress
		}
	}
	if next := sum / float64(len(r.retailers)); next > r.progress {
		r.progress = next
	}
}

func (r *Reporter) PageScraped(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rs, ok := r.perRetailer[key]; ok {
		rs.PagesScraped++
	}
}

func (r *Reporter) ProductFound(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.productsFound++
	if rs, ok := r.perRetailer[key]; ok {
		rs.ProductsFound++
	}
}

func (r *Reporter) RetailerCompleted(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rs, ok := r.perRetailer[key]; ok {
		rs.State = "completed"
		rs.Progress = 1
	}
	r.recalcProgress()
}

func (r *Reporter) RetailerFailed(key string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rs, ok := r.perRetailer[key]; ok {
		rs.State = "failed"
		rs.Progress = 1
		if err != nil {
			rs.Error = err.Error()
		}
	}
	r.recalcProgress()
}

func (r *Reporter) SetSnapshotName(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshotName = name
}

func (r *Reporter) SetError(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errMsg = msg
}

func (r *Reporter) AppendLog(level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log = append(r.log, LogEntry{Time: time.Now(), Level: level, Message: message})
	if len(r.log) > maxLogEntries {
		r.log = r.log[len(r.log)-maxLogEntries:]
	}
}

// Report returns a deep copy of the current status.
func (r *Reporter) Report() Report {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report := Report{
		JobID:         r.jobID,
		State:         r.state,
		Region:        r.region,
		Retailers:     append([]string(nil), r.retailers...),
		Genders:       append([]string(nil), r.genders...),
		Progress:      r.progress * 100,
		ProductsFound: r.productsFound,
		SnapshotName:  r.snapshotName,
		Error:         r.errMsg,
	}
	if r.startedAt != nil {
		t := *r.startedAt
		report.StartedAt = &t
	}
	if r.finishedAt != nil {
		t := *r.finishedAt
		report.FinishedAt = &t
	}
	if len(r.perRetailer) > 0 {
		report.RetailerState = make(map[string]RetailerStatus, len(r.perRetailer))
		for key, rs := range r.perRetailer {
			copied := *rs
			copied.Progress *= 100
			report.RetailerState[key] = copied
		}
	}
	if len(r.log) > 0 {
		report.RecentLog = append([]LogEntry(nil), r.log...)
	}
	return report
}
