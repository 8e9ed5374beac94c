package interfaces

type SchedulerInterface interface {
	Init()
	Stop()
	Persist() error
	OnNewsRefresh(fn func())
}
