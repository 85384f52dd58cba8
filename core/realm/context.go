package realm

import (
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/coreform/jsvm/core/builtins"
	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/hostapi"
	"github.com/coreform/jsvm/core/job"
	"github.com/coreform/jsvm/core/value"
	"github.com/coreform/jsvm/core/vm"
)

// Config assembles one Context: a GC config, a VM runtime-limit config,
// the host hook set, and a logger shared (via .Named sub-loggers) across
// every owned subsystem, matching the teacher's convention of threading
// one logger into every long-lived service object at construction.
type Config struct {
	GC     gc.Config
	VM     vm.Config
	Hooks  hostapi.Hooks
	Logger *zap.Logger

	// GCRequestRate/GCRequestBurst bound how often the host's
	// Context.RequestGC can force a collection (spec.md §5's
	// cancellation/timeout analog applied to GC pressure instead of
	// script runtime).
	GCRequestRate  rate.Limit
	GCRequestBurst int
}

// Context is one engine instance: spec.md §4.5 "a context holds the
// current realm, the active VM frame stack, the allocator/GC handle, the
// string interner handle, and host hooks". The string interner is an
// external collaborator per spec.md §1 and is not modeled here.
type Context struct {
	log   *zap.Logger
	Heap  *gc.Heap
	Realm *Realm
	VM    *vm.VM
	Hooks hostapi.Hooks
	Jobs  *job.Queue

	gcLimiter *rate.Limiter
}

// NewContext builds one fresh realm, heap, and VM, installs every
// core/builtins intrinsic, and wires the VM's live frame stack into the
// heap's root enumeration (spec.md §4.1 "root enumeration... the operand
// stack, active call frames").
func NewContext(cfg Config) (*Context, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	gcCfg := cfg.GC
	gcCfg.Logger = log.Named("gc")
	heap := gc.NewHeap(gcCfg)

	r, err := NewRealm(heap, log.Named("realm"))
	if err != nil {
		return nil, err
	}

	vmCfg := cfg.VM
	vmCfg.Logger = log.Named("vm")
	machine := vm.New(heap, r.Global, vmCfg)
	heap.SetFrameRoots(machine.FrameRoots)

	jobs := job.NewQueue(log.Named("job"))

	hooks := cfg.Hooks
	if hooks.JobEnqueue == nil {
		hooks.JobEnqueue = func(run func()) { jobs.Enqueue(job.Task{Name: "job", Run: run}) }
	}
	if hooks.JobDrain == nil {
		hooks.JobDrain = jobs.Drain
	}

	if err := builtins.Install(builtins.Env{
		Heap:       heap,
		Global:     r.Global,
		Intrinsics: r.Intrinsics,
		VM:         machine,
		Jobs:       jobs,
		Hooks:      hooks,
		Logger:     log.Named("builtins"),
	}); err != nil {
		return nil, err
	}

	reqRate := cfg.GCRequestRate
	if reqRate == 0 {
		reqRate = 10
	}
	burst := cfg.GCRequestBurst
	if burst == 0 {
		burst = 5
	}

	return &Context{
		log:       log,
		Heap:      heap,
		Realm:     r,
		VM:        machine,
		Hooks:     hooks,
		Jobs:      jobs,
		gcLimiter: rate.NewLimiter(reqRate, burst),
	}, nil
}

// Eval runs code as a fresh top-level script, reports an uncaught
// exception through the configured hook (spec.md §7), and drains the job
// queue once the script returns (spec.md §2 "Job queues drain between
// top-level invocations").
func (c *Context) Eval(code *vm.CodeBlock) (value.Value, error) {
	result, thrown, err := c.VM.Run(code, value.UndefinedValue, nil)
	if err != nil {
		return value.UndefinedValue, err
	}
	if thrown != nil {
		if c.Hooks.OnUncaughtException != nil {
			c.Hooks.OnUncaughtException(thrown.Value)
		}
		c.DrainJobs()
		return value.UndefinedValue, thrown
	}
	c.DrainJobs()
	return result, nil
}

// DrainJobs runs the job queue to quiescence through the configured
// JobDrain hook (a host may substitute its own scheduler entirely).
func (c *Context) DrainJobs() {
	if c.Hooks.JobDrain != nil {
		c.Hooks.JobDrain()
	}
}

// RequestGC forces a collection, rate-limited so a host script calling it
// in a tight loop cannot force more collections than the configured
// budget (see Config.GCRequestRate/Burst).
func (c *Context) RequestGC() {
	if c.gcLimiter != nil && !c.gcLimiter.Allow() {
		return
	}
	c.Heap.Collect()
}
