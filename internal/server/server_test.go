package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nandakiran-r/TestPiper/internal/server"
)

// fakeVoice returns canned WAV bytes or an error.
type fakeVoice struct {
	wav      []byte
	err      error
	lastText string
}

func (f *fakeVoice) Synthesize(ctx context.Context, text string) ([]byte, error) {
	f.lastText = text
	if f.err != nil {
		return nil, f.err
	}
	return f.wav, nil
}

// silenceWave is a minimal mono 16-bit PCM WAV with four samples.
func silenceWave() []byte {
	wav := []byte("RIFF\x00\x00\x00\x00WAVEfmt \x10\x00\x00\x00\x01\x00\x01\x00\x22\x56\x00\x00\x44\xac\x00\x00\x02\x00\x10\x00data\x08\x00\x00\x00")
	return append(wav, make([]byte, 8)...)
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func detailOf(rec *httptest.ResponseRecorder) string {
	var body map[string]string
	Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
	return body["detail"]
}

var _ = Describe("TTS HTTP wrapper", func() {
	var voice *fakeVoice
	var router http.Handler

	BeforeEach(func() {
		voice = &fakeVoice{wav: silenceWave()}
		router = server.New(voice).Router()
	})

	Describe("The home endpoint", func() {
		It("should report status and usage", func() {
			rec := get(router, "/")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var body map[string]string
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body["status"]).To(Equal("running"))
			Expect(body["usage"]).To(Equal("/tts?text=YourTextHere"))
		})
	})

	Describe("The health endpoint", func() {
		It("should be ok when the voice is loaded", func() {
			Expect(get(router, "/health").Code).To(Equal(http.StatusOK))
		})

		It("should be unavailable when the voice failed to load", func() {
			router := server.New(nil).Router()
			Expect(get(router, "/health").Code).To(Equal(http.StatusServiceUnavailable))
		})
	})

	Describe("The tts endpoint", func() {
		It("should return WAV audio for a valid request", func() {
			rec := get(router, "/tts?text=hello")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal("audio/wav"))

			body, err := io.ReadAll(rec.Body)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(body[0:4])).To(Equal("RIFF"))
			Expect(voice.lastText).To(Equal("hello"))
		})

		It("should pass the text through URL decoding", func() {
			text := url.QueryEscape("hello world")
			rec := get(router, "/tts?text="+text)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(voice.lastText).To(Equal("hello world"))
		})

		It("should reject a missing text parameter", func() {
			rec := get(router, "/tts")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(detailOf(rec)).To(Equal("Text cannot be empty"))
		})

		It("should reject blank text", func() {
			rec := get(router, "/tts?text=%20%20")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should reject malformed numeric parameters", func() {
			rec := get(router, "/tts?text=hello&pitch=high")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(detailOf(rec)).To(ContainSubstring("pitch"))
		})

		It("should reject a non-positive speed", func() {
			rec := get(router, "/tts?text=hello&speed=0")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should accept effect parameters", func() {
			rec := get(router, "/tts?text=hello&pitch=2&speed=150&gain=3&bass=1&treble=1&normalize=false")
			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("should be unavailable when no voice is loaded", func() {
			router := server.New(nil).Router()
			rec := get(router, "/tts?text=hello")
			Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
			Expect(detailOf(rec)).To(ContainSubstring("not loaded"))
		})

		It("should surface synthesis failures as server errors", func() {
			voice.err = errors.New("model file corrupt")
			rec := get(router, "/tts?text=hello")
			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(detailOf(rec)).To(ContainSubstring("model file corrupt"))
		})
	})

	Describe("The metrics endpoint", func() {
		It("should expose request counters", func() {
			get(router, "/tts?text=hello")

			rec := get(router, "/metrics")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("testpiper_tts_requests_total"))
			Expect(rec.Body.String()).To(ContainSubstring("testpiper_tts_synthesis_seconds"))
		})
	})
})
