// pkg/actuate/fake.go

package actuate

import "context"

// FakeActuator records mutations and lets tests script failures and side
// effects (e.g. flipping a fake prober's presence when the fault fires).
type FakeActuator struct {
	Faults       int
	Restarts     []string
	Ups          []string
	Downs        []string
	Wakes        []int
	Suspends     int
	TriggerErr   error
	RestartErr   error
	UpErrs       []error // consumed one per ConnectionUp call
	DownErr      error
	SuspendErr   error
	OnFault      func()
	OnRestart    func()
	OnSuspend    func()
	OnConnection func()
}

var _ Actuator = (*FakeActuator)(nil)

func (f *FakeActuator) TriggerFault(ctx context.Context) error {
	f.Faults++
	if f.OnFault != nil {
		f.OnFault()
	}
	return f.TriggerErr
}

func (f *FakeActuator) RestartUnit(ctx context.Context, unit string) error {
	f.Restarts = append(f.Restarts, unit)
	if f.OnRestart != nil {
		f.OnRestart()
	}
	return f.RestartErr
}

func (f *FakeActuator) ConnectionUp(ctx context.Context, name string) error {
	f.Ups = append(f.Ups, name)
	if f.OnConnection != nil {
		f.OnConnection()
	}
	if len(f.UpErrs) > 0 {
		err := f.UpErrs[0]
		f.UpErrs = f.UpErrs[1:]
		return err
	}
	return nil
}

func (f *FakeActuator) ConnectionDown(ctx context.Context, name string) error {
	f.Downs = append(f.Downs, name)
	return f.DownErr
}

func (f *FakeActuator) ScheduleWake(ctx context.Context, seconds int) error {
	f.Wakes = append(f.Wakes, seconds)
	return nil
}

func (f *FakeActuator) Suspend(ctx context.Context) error {
	f.Suspends++
	if f.OnSuspend != nil {
		f.OnSuspend()
	}
	return f.SuspendErr
}
