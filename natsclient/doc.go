// Package natsclient wraps a NATS connection with a circuit breaker.
//
// edgeipc uses NATS as an optional relay for encoded messages: a function
// process publishes the frames it receives from the host and gets replies
// back on a second subject. The Client here owns that one connection.
//
// # Circuit breaker
//
// Each failed Connect counts toward a threshold (default 5). When it is
// reached the circuit opens and Connect fails fast with errors.ErrCircuitOpen
// until the current backoff has passed. The backoff doubles each round up to
// a cap (default one minute) and resets on a successful connect or reconnect.
// Once connected, reconnection is left to nats.go.
//
//	client, err := natsclient.NewClient(url,
//	    natsclient.WithName("edgeipc-"+cfg.InstanceID),
//	    natsclient.WithLogger(logger),
//	    natsclient.WithMetrics(metrics),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := client.ConnectWithRetry(ctx, retry.Quick()); err != nil {
//	    return err
//	}
//	defer client.Close(context.Background())
//
//	err = client.Subscribe(ctx, "fn.hello.reply", func(ctx context.Context, data []byte) {
//	    // each call gets a 30s deadline
//	})
//	err = client.Publish(ctx, "fn.hello", frame)
//
// Every error is classified through the errors package: connection problems
// are transient, a closed client is fatal and bad options are invalid.
//
// # Testing
//
// NewTestClient starts a throwaway NATS server with testcontainers-go and
// returns a connected Client. Tests that use it carry the integration build
// tag.
package natsclient
