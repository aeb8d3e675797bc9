package sim

import "github.com/sirupsen/logrus"

// RequestSource supplies newly-due trip requests to the Ingest step. Out
// of core scope per spec.md §1 (CSV ingestion is an external collaborator);
// a static in-memory source is provided for tests and small scenarios.
type RequestSource interface {
	DueRequests(simTime int64) []Request
}

// StaticRequestSource serves a fixed slice of requests, each surfaced once
// its DepartureTime has passed.
type StaticRequestSource struct {
	pending []Request
	served  map[RequestId]bool
}

// NewStaticRequestSource builds a StaticRequestSource over reqs.
func NewStaticRequestSource(reqs []Request) *StaticRequestSource {
	return &StaticRequestSource{pending: reqs, served: map[RequestId]bool{}}
}

func (src *StaticRequestSource) DueRequests(simTime int64) []Request {
	var due []Request
	for _, r := range src.pending {
		if src.served[r.ID] {
			continue
		}
		if r.IsDue(simTime) {
			due = append(due, r)
			src.served[r.ID] = true
		}
	}
	return due
}

// Simulator drives the tick loop over a SimulationState, producing a new
// state each tick per spec.md §4.6. It holds no entity data itself — all
// state lives in the SimulationState it carries, so Simulator values are
// cheap to snapshot for tests.
type Simulator struct {
	State      *SimulationState
	Env        *Environment
	Generators []Generator
	Requests   RequestSource

	// DroppedThisTick counts requests that remained unmatched at the end
	// of the Generate step (spec §4.4 step 3, a per-tick metric, reset
	// each tick).
	DroppedThisTick int
}

// NewSimulator constructs a Simulator over an initial state.
func NewSimulator(state *SimulationState, env *Environment, generators []Generator, requests RequestSource) *Simulator {
	return &Simulator{State: state, Env: env, Generators: generators, Requests: requests}
}

// Tick executes one atomic advance of simulation time, implementing the
// eight steps of spec.md §4.6: ingest, cancel, generate, apply, step,
// driver update, tick, report flush. Returns an error only on a fatal
// SimulationStateError (spec §7); the caller must abort the run.
func (sim *Simulator) Tick() error {
	s := sim.State
	env := sim.Env

	// 1. Ingest: pull due requests from the input source.
	if sim.Requests != nil {
		for _, r := range sim.Requests.DueRequests(s.SimTime) {
			next, err := s.AddRequest(r)
			if err != nil {
				return err
			}
			s = next
		}
	}

	// 2. Cancel: remove unassigned requests past their cancel time.
	for _, rid := range s.RequestIDsSorted() {
		r := s.Requests[rid]
		if !r.Assigned && r.IsExpired(s.SimTime) {
			s = s.RemoveRequest(rid)
			env.Reporter.File(Report{Type: "request_cancelled", Time: s.SimTime, Fields: map[string]string{
				"request_id": string(rid),
			}})
		}
	}

	// 3. Generate: run each instruction generator in declared order.
	var instructions []Instruction
	nextGenerators := make([]Generator, len(sim.Generators))
	for i, g := range sim.Generators {
		updated, gen := g.Generate(s, env)
		nextGenerators[i] = updated
		instructions = append(instructions, gen...)
	}
	sim.Generators = nextGenerators

	matchedRequests := map[RequestId]bool{}
	for _, instr := range instructions {
		if d, ok := instr.(interface{ GetRequestID() RequestId }); ok {
			matchedRequests[d.GetRequestID()] = true
		}
	}
	sim.DroppedThisTick = 0
	for _, rid := range s.RequestIDsSorted() {
		r := s.Requests[rid]
		if !r.Assigned && r.IsDue(s.SimTime) && !matchedRequests[rid] {
			sim.DroppedThisTick++
		}
	}

	// 4. Apply: fold instructions over state in stable order. An
	// inadmissible instruction is dropped with a filed report, not fatal.
	for _, instr := range instructions {
		next, err := instr.Apply(s, env)
		if err != nil {
			if _, isEntity := err.(*EntityError); isEntity {
				env.Reporter.File(Report{Type: "instruction_dropped", Time: s.SimTime, Fields: map[string]string{
					"instruction": instr.String(), "msg": err.Error(),
				}})
				continue
			}
			return err
		}
		s = next
	}

	// 5. Step: iterate vehicles in id-sorted order, invoking state Update.
	for _, vid := range s.VehicleIDsSorted() {
		next, err := s.StepVehicle(vid, env)
		if err != nil {
			return err
		}
		s = next
	}

	// 6. Driver update: iterate vehicles, invoking driver-state Update.
	for _, vid := range s.VehicleIDsSorted() {
		v, ok := s.Vehicles[vid]
		if !ok || v.Driver == nil {
			continue
		}
		next, driver, err := v.Driver.Update(s, env)
		if err != nil {
			return err
		}
		s = next
		if updated, ok := s.Vehicles[vid]; ok {
			updated.Driver = driver
			modified, err := s.ModifyVehicle(updated)
			if err != nil {
				return err
			}
			s = modified
		}
	}

	// 7. Tick: advance sim_time.
	s = s.Tick()

	sim.State = s

	// 8. Report flush at log_period_seconds intervals.
	period := env.Config.Global.LogPeriodSeconds
	if period <= 0 {
		period = 1
	}
	if s.SimTime%period == 0 {
		env.Reporter.Flush(s.SimTime)
	}

	logrus.Debugf("[tick %010d] vehicles=%d requests=%d dropped=%d", s.SimTime, len(s.Vehicles), len(s.Requests), sim.DroppedThisTick)

	return nil
}

// Run advances the tick loop until sim_time >= end_time. Returns an error
// only if a tick surfaces a fatal SimulationStateError (exit code 3 at the
// CLI layer); terminates cleanly otherwise.
func (sim *Simulator) Run() error {
	endTime := sim.Env.Config.Sim.EndTime
	logrus.Infof("starting simulation %q: start=%d end=%d step=%d",
		sim.Env.Config.Sim.SimName, sim.State.SimTime, endTime, sim.State.TimestepSeconds)

	for sim.State.SimTime < endTime {
		if err := sim.Tick(); err != nil {
			logrus.Errorf("fatal invariant violation at tick %d: %v", sim.State.SimTime, err)
			sim.Env.Reporter.Close()
			return err
		}
	}

	sim.Env.Reporter.Close()
	logrus.Infof("simulation complete at tick %d", sim.State.SimTime)
	return nil
}
