package txmanager

import "time"

type EventListener interface {
	OnCall(took time.Duration, err error)
	OnTransition(t Transition)
	OnReceiptWait(took time.Duration, state State)
}

type SelectiveListener struct {
	OnCallCb        func(took time.Duration, err error)
	OnTransitionCb  func(t Transition)
	OnReceiptWaitCb func(took time.Duration, state State)
}

func (l SelectiveListener) OnCall(took time.Duration, err error) {
	if l.OnCallCb != nil {
		l.OnCallCb(took, err)
	}
}

func (l SelectiveListener) OnTransition(t Transition) {
	if l.OnTransitionCb != nil {
		l.OnTransitionCb(t)
	}
}

func (l SelectiveListener) OnReceiptWait(took time.Duration, state State) {
	if l.OnReceiptWaitCb != nil {
		l.OnReceiptWaitCb(took, state)
	}
}
