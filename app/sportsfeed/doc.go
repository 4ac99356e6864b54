// Package sportsfeed is a demo harness for the event bus: it publishes a sample sports
// feed (tagged results, errors, ads and a legacy flat result stream) with randomized
// pacing, and prints every event it receives through per-type subscriptions.
//
//	app, err := sportsfeed.NewApp(sportsfeed.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	defer app.Close()
//	return app.Run(ctx)
package sportsfeed
