package llm_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"codewizard/llm"
)

var _ = Describe("Session", func() {
	var (
		provider *fakeProvider
		session  *llm.Session
		ctx      context.Context
	)

	BeforeEach(func() {
		provider = &fakeProvider{replies: []string{"first answer", "second answer"}}
		session = llm.NewSession(provider, "test-model", "You are a helpful assistant.")
		ctx = context.Background()
	})

	Describe("Send", func() {
		It("prepends system prompts and accumulates history", func() {
			resp, err := session.Send(ctx, "hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Content).To(Equal("first answer"))

			req := provider.requests[0]
			Expect(req.Model).To(Equal("test-model"))
			Expect(req.Messages).To(HaveLen(2))
			Expect(req.Messages[0].Role).To(Equal(llm.RoleSystem))
			Expect(req.Messages[1].Role).To(Equal(llm.RoleUser))
			Expect(req.Messages[1].Content).To(Equal("hello"))

			_, err = session.Send(ctx, "follow-up")
			Expect(err).NotTo(HaveOccurred())

			req = provider.requests[1]
			Expect(req.Messages).To(HaveLen(4))
			Expect(req.Messages[1].Content).To(Equal("hello"))
			Expect(req.Messages[2].Role).To(Equal(llm.RoleAssistant))
			Expect(req.Messages[2].Content).To(Equal("first answer"))
			Expect(req.Messages[3].Content).To(Equal("follow-up"))
		})

		It("does not record a turn when the provider fails", func() {
			provider.err = errors.New("rate limited")

			_, err := session.Send(ctx, "hello")
			Expect(err).To(MatchError("rate limited"))
			Expect(session.GetHistory()).To(BeEmpty())
		})

		It("passes temperature and max tokens through to the request", func() {
			session.SetTemperature(0.7)
			session.SetMaxTokens(2048)

			_, err := session.Send(ctx, "hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(provider.requests[0].Temperature).To(Equal(0.7))
			Expect(provider.requests[0].MaxTokens).To(Equal(2048))
		})
	})

	Describe("SendStream", func() {
		It("assembles chunks into the full response and reports usage", func() {
			var streamed string
			resp, err := session.SendStream(ctx, "hello", func(chunk llm.StreamChunk) {
				streamed += chunk.Content
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Content).To(Equal("first answer"))
			Expect(streamed).To(Equal("first answer"))
			Expect(resp.Usage.InputTokens).To(Equal(10))
			Expect(resp.Usage.OutputTokens).To(Equal(5))

			history := session.GetHistory()
			Expect(history).To(HaveLen(2))
			Expect(history[1].Content).To(Equal("first answer"))
		})

		It("surfaces stream errors without recording the turn", func() {
			provider.err = errors.New("stream cut")

			_, err := session.SendStream(ctx, "hello", nil)
			Expect(err).To(MatchError("stream cut"))
			Expect(session.GetHistory()).To(BeEmpty())
		})
	})

	Describe("Clear", func() {
		It("drops history but keeps system prompts", func() {
			_, err := session.Send(ctx, "hello")
			Expect(err).NotTo(HaveOccurred())

			dropped := session.Clear()
			Expect(dropped).To(Equal(2))
			Expect(session.GetHistory()).To(BeEmpty())
			Expect(session.GetSystemPrompts()).To(HaveLen(1))

			_, err = session.Send(ctx, "again")
			Expect(err).NotTo(HaveOccurred())
			req := provider.requests[1]
			Expect(req.Messages).To(HaveLen(2))
			Expect(req.Messages[0].Role).To(Equal(llm.RoleSystem))
		})
	})

	Describe("Clone", func() {
		It("copies state without sharing history", func() {
			_, err := session.Send(ctx, "hello")
			Expect(err).NotTo(HaveOccurred())

			clone := session.Clone()
			clone.Clear()

			Expect(session.GetHistory()).To(HaveLen(2))
			Expect(clone.GetHistory()).To(BeEmpty())
		})
	})
})
