package notification

// WaitBackground blocks until broadcast email fan-outs started by svc finish.
func WaitBackground(svc Service) {
	svc.(*service).background.Wait()
}

func SetBatchSize(svc Service, n int) {
	svc.(*service).batchSize = n
}
