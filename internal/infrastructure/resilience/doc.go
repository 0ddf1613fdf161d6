/*
Package resilience provides a circuit breaker for outbound calls.

# Overview

The collector endpoint is called at least once a minute. When it is down for
an extended period the breaker opens and further attempts fail fast with
ErrCircuitOpen, without touching the network, until the open window expires.

# Usage

	breaker := resilience.New("collector", resilience.Settings{
		Timeout: 5 * time.Minute,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 9
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errClientStatus)
		},
	})

	resp, err := resilience.Execute(breaker, func() (*resty.Response, error) {
		return req.Post(url)
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
