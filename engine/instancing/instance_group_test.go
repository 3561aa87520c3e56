package instancing

import (
	"slices"
	"testing"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-deferred/engine/material"
	"github.com/Carmen-Shannon/oxy-deferred/engine/mesh"
	"github.com/Carmen-Shannon/oxy-deferred/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
)

func newGroup(options ...InstanceGroupBuilderOption) *InstanceGroup {
	return NewInstanceGroup(mesh.Cube(), material.NewMaterial(), options...)
}

func record(v float32) []float32 {
	r := make([]float32, 10)
	for i := range r {
		r[i] = v
	}
	return r
}

func checkInvariant(t *testing.T, g *InstanceGroup) {
	t.Helper()
	if len(g.Data()) != g.Count()*g.Stride() {
		t.Fatalf("len(Data()) = %v, want %v", len(g.Data()), g.Count()*g.Stride())
	}
	if len(g.IDs()) != g.Count() {
		t.Fatalf("len(IDs()) = %v, want %v", len(g.IDs()), g.Count())
	}
}

func TestAddFillsTransformRecord(t *testing.T) {
	g := newGroup()
	tr := transform.NewTransform(
		transform.WithPosition(1, 2, 3),
		transform.WithScale(4, 5, 6),
	)
	g.Add(tr, 7)

	want := []float32{1, 2, 3, 4, 5, 6, 0, 0, 0, 1}
	if !slices.Equal(g.Data(), want) {
		t.Errorf("Data() = %v, want %v", g.Data(), want)
	}
	if !g.Changed() {
		t.Error("Changed() = false after Add")
	}
	checkInvariant(t, g)
}

func TestCustomLayout(t *testing.T) {
	layout := AttributeLayout{{Name: "position", Components: 3}, {Name: "color", Components: 4}}
	g := newGroup(WithLayout(layout))
	if g.Stride() != 7 {
		t.Fatalf("Stride() = %v, want 7", g.Stride())
	}
	g.Add(transform.NewTransform(transform.WithPosition(1, 1, 1)), 1)
	want := []float32{1, 1, 1, 0, 0, 0, 0}
	if !slices.Equal(g.Data(), want) {
		t.Errorf("Data() = %v, want %v", g.Data(), want)
	}

	defer func() {
		if recover() == nil {
			t.Error("AddRecord with a short record should panic")
		}
	}()
	g.AddRecord(record(1), 2)
}

func TestInvariantUnderAddErase(t *testing.T) {
	g := newGroup()
	ops := []struct {
		add bool
		id  RenderID
	}{
		{true, 1}, {true, 2}, {true, 3}, {false, 2}, {true, 4}, {false, 1}, {false, 9}, {false, 3}, {false, 4}, {true, 5},
	}
	for _, op := range ops {
		if op.add {
			g.AddRecord(record(float32(op.id)), op.id)
		} else {
			g.Erase(op.id)
		}
		checkInvariant(t, g)
	}
	if !slices.Equal(g.IDs(), []RenderID{5}) {
		t.Errorf("IDs() = %v, want [5]", g.IDs())
	}
}

func TestEraseKeepsOrder(t *testing.T) {
	g := newGroup()
	g.AddRecord(record(1), 10)
	g.AddRecord(record(2), 20)
	g.AddRecord(record(3), 30)

	if !g.Erase(20) {
		t.Fatal("Erase(20) = false, want true")
	}
	want := append(record(1), record(3)...)
	if !slices.Equal(g.Data(), want) {
		t.Errorf("Data() = %v, want %v", g.Data(), want)
	}
	if !slices.Equal(g.IDs(), []RenderID{10, 30}) {
		t.Errorf("IDs() = %v, want [10 30]", g.IDs())
	}

	g.ResetInstanceBuffer(gputest.NewDevice())
	before := slices.Clone(g.Data())
	if g.Erase(40) {
		t.Error("Erase(40) = true, want false")
	}
	if !slices.Equal(g.Data(), before) || g.Count() != 2 || g.Changed() {
		t.Error("Erase of a missing id changed the group")
	}
}

func TestResetInstanceBufferGrowth(t *testing.T) {
	dev := gputest.NewDevice()
	g := newGroup()
	for i := range 3 {
		g.AddRecord(record(float32(i)), RenderID(i+1))
	}

	g.ResetInstanceBuffer(dev)
	if got := dev.Count("CreateBuffer"); got != 1 {
		t.Fatalf("CreateBuffer calls = %v, want 1", got)
	}
	if g.Capacity() != 6 {
		t.Errorf("Capacity() = %v, want 6", g.Capacity())
	}
	if g.Changed() {
		t.Error("Changed() = true after ResetInstanceBuffer")
	}

	g.ResetInstanceBuffer(dev)
	if got := dev.Count("CreateBuffer"); got != 1 {
		t.Errorf("CreateBuffer calls after second reset = %v, want 1", got)
	}
	if got := dev.Count("WriteBuffer"); got != 2 {
		t.Errorf("WriteBuffer calls = %v, want 2", got)
	}

	for i := range 4 {
		g.AddRecord(record(9), RenderID(10+i))
	}
	g.ResetInstanceBuffer(dev)
	if got := dev.Count("CreateBuffer"); got != 2 {
		t.Errorf("CreateBuffer calls after growth = %v, want 2", got)
	}
	if g.Capacity() != 14 {
		t.Errorf("Capacity() = %v, want 14", g.Capacity())
	}
	if got := len(dev.Buffers[g.Buffer().Handle()]); got != 14*10*4 {
		t.Errorf("buffer size = %v, want %v", got, 14*10*4)
	}
}

func TestClearInstancesKeepsCapacity(t *testing.T) {
	dev := gputest.NewDevice()
	g := newGroup()
	g.AddRecord(record(1), 1)
	g.AddRecord(record(2), 2)
	g.ResetInstanceBuffer(dev)

	g.ClearInstances()
	checkInvariant(t, g)
	if !g.Changed() {
		t.Error("Changed() = false after ClearInstances")
	}
	if g.Capacity() != 4 {
		t.Errorf("Capacity() = %v, want 4", g.Capacity())
	}

	g.AddRecord(record(3), 3)
	g.ResetInstanceBuffer(dev)
	if got := dev.Count("CreateBuffer"); got != 1 {
		t.Errorf("CreateBuffer calls = %v, want 1", got)
	}
}

func TestUpdateRewritesRecord(t *testing.T) {
	g := newGroup()
	a := transform.NewTransform()
	b := transform.NewTransform(transform.WithPosition(5, 5, 5))
	g.Add(a, 1)
	g.Add(b, 2)

	b.SetPosition(mgl32.Vec3{7, 8, 9})
	if !g.Update(2, b) {
		t.Fatal("Update(2) = false, want true")
	}
	if got := g.Data()[10:13]; !slices.Equal(got, []float32{7, 8, 9}) {
		t.Errorf("record 2 position = %v, want [7 8 9]", got)
	}
	if got := g.Data()[0:3]; !slices.Equal(got, []float32{0, 0, 0}) {
		t.Errorf("record 1 position = %v, want [0 0 0]", got)
	}
	if g.Update(3, b) {
		t.Error("Update(3) = true, want false")
	}
	checkInvariant(t, g)
}

func TestDrawSkipsEmptyGroup(t *testing.T) {
	dev := gputest.NewDevice()
	g := newGroup()
	g.Draw(dev)
	if got := dev.Count("DrawIndexed"); got != 0 {
		t.Errorf("DrawIndexed calls = %v, want 0", got)
	}
	g.AddRecord(record(1), 1)
	g.ResetInstanceBuffer(dev)
	g.Draw(dev)
	calls := dev.CallsTo("DrawIndexed")
	if len(calls) != 1 || calls[0].Detail != "fb=0 shader=0 instances=1" {
		t.Errorf("DrawIndexed calls = %v, want one with 1 instance", calls)
	}
}

func TestSortByDistance(t *testing.T) {
	g := newGroup()
	g.Add(transform.NewTransform(transform.WithPosition(0, 0, 1)), 1)
	g.Add(transform.NewTransform(transform.WithPosition(0, 0, 10)), 2)
	g.Add(transform.NewTransform(transform.WithPosition(0, 0, 5)), 3)
	g.ResetInstanceBuffer(gputest.NewDevice())

	g.SortByDistance(mgl32.Vec3{})
	if got := g.IDs(); !slices.Equal(got, []RenderID{2, 3, 1}) {
		t.Errorf("IDs() = %v, want [2 3 1]", got)
	}
	if got := g.Data()[2]; got != 10 {
		t.Errorf("first record z = %v, want 10", got)
	}
	if !g.Changed() {
		t.Error("Changed() = false after reordering")
	}
	checkInvariant(t, g)

	g.ResetInstanceBuffer(gputest.NewDevice())
	g.SortByDistance(mgl32.Vec3{})
	if g.Changed() {
		t.Error("Changed() = true after sorting an already sorted group")
	}
}
