package block_test

// Hand-written in the shape mockgen produces for block.Visitor, so the
// suite does not depend on running mockgen at build time.

import (
	reflect "reflect"

	gomock "github.com/golang/mock/gomock"

	"github.com/samitbasu/gohdl/block"
)

type MockVisitor struct {
	ctrl     *gomock.Controller
	recorder *MockVisitorMockRecorder
}

type MockVisitorMockRecorder struct {
	mock *MockVisitor
}

func NewMockVisitor(ctrl *gomock.Controller) *MockVisitor {
	mock := &MockVisitor{ctrl: ctrl}
	mock.recorder = &MockVisitorMockRecorder{mock}
	return mock
}

func (m *MockVisitor) EXPECT() *MockVisitorMockRecorder {
	return m.recorder
}

func (m *MockVisitor) StartScope(name string) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "StartScope", name)
}

func (mr *MockVisitorMockRecorder) StartScope(name interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "StartScope", reflect.TypeOf((*MockVisitor)(nil).StartScope), name)
}

func (m *MockVisitor) EndScope() {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "EndScope")
}

func (mr *MockVisitorMockRecorder) EndScope() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "EndScope", reflect.TypeOf((*MockVisitor)(nil).EndScope))
}

func (m *MockVisitor) StartNamespace(name string) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "StartNamespace", name)
}

func (mr *MockVisitorMockRecorder) StartNamespace(name interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "StartNamespace", reflect.TypeOf((*MockVisitor)(nil).StartNamespace), name)
}

func (m *MockVisitor) EndNamespace() {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "EndNamespace")
}

func (mr *MockVisitorMockRecorder) EndNamespace() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "EndNamespace", reflect.TypeOf((*MockVisitor)(nil).EndNamespace))
}

func (m *MockVisitor) Atom(a block.Atom) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Atom", a)
}

func (mr *MockVisitorMockRecorder) Atom(a interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Atom", reflect.TypeOf((*MockVisitor)(nil).Atom), a)
}
