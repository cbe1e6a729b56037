package trace

import "time"

// Point emits an instant event under parent, e.g. one per instantiation:
//
//	trace.Point(t, trace.ScopeInst, "inst:Box_int", "Box<int>", span.ID())
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Seq:      NextSeq(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent,
		GID:      getGoroutineID(),
		Name:     name,
		Detail:   detail,
	})
}
