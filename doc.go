// Package deepseek is a client for the DeepSeek chat completions API.
//
// Build a Client from a config.Config (or from DEEPSEEK_* environment
// variables), start a conversation with Chat and send it:
//
//	client, err := deepseek.FromEnvironment()
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	b, err := client.Chat().AddUserMessage("Explain backoff in one line")
//	if err != nil {
//		return err
//	}
//	resp, err := b.WithModel(models.Reasoner).Send(ctx)
//
// Builder methods that validate their argument return the builder and an
// error and leave the builder unchanged on failure. Send is the only call
// that performs I/O; transient failures are retried with exponential
// backoff and every failure is an *errors.AppError.
package deepseek
