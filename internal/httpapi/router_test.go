package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"energyportal/internal/activity"
	"energyportal/internal/backend"
	"energyportal/internal/httpapi"
	"energyportal/pkg/authtoken"
	"energyportal/pkg/config"
	"energyportal/pkg/logging"
)

var _ = Describe("Portal router", func() {
	var (
		upstream *httptest.Server
		fake     *fakeBackend
		sessions *memSessions
		log      *memActivity
		router   http.Handler
	)

	BeforeEach(func() {
		fake = newFakeBackend()
		upstream = httptest.NewServer(fake)
		DeferCleanup(upstream.Close)

		sessions = newMemSessions()
		log = &memActivity{}
		router = httpapi.NewRouter(httpapi.Dependencies{
			Cfg:      config.Config{PortalAllowedOrigins: []string{"https://portal.example.com"}},
			Log:      logging.Discard(),
			Backend:  backend.New(upstream.URL, 5*time.Second),
			Sessions: sessions,
			Activity: log,
			Signer:   authtoken.NewSigner("suite-secret", "energyportal", time.Hour),
		})
	})

	call := func(method, path, token, body string) (int, map[string]any) {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		out := map[string]any{}
		if rr.Body.Len() > 0 {
			_ = json.Unmarshal(rr.Body.Bytes(), &out)
		}
		return rr.Code, out
	}

	login := func(email string) string {
		status, body := call(http.MethodPost, "/v1/auth/login", "", `{"email":"`+email+`","password":"pw"}`)
		Expect(status).To(Equal(http.StatusOK))
		token, _ := body["token"].(string)
		Expect(token).NotTo(BeEmpty())
		return token
	}

	It("answers health checks without a session", func() {
		status, _ := call(http.MethodGet, "/healthz", "", "")
		Expect(status).To(Equal(http.StatusOK))
	})

	It("answers CORS preflight for allowed origins only", func() {
		req := httptest.NewRequest(http.MethodOptions, "/v1/auth/login", nil)
		req.Header.Set("Origin", "https://portal.example.com")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		Expect(rr.Code).To(Equal(http.StatusNoContent))
		Expect(rr.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://portal.example.com"))

		req = httptest.NewRequest(http.MethodOptions, "/v1/auth/login", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		Expect(rr.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})

	It("relays bad credentials as 401", func() {
		status, body := call(http.MethodPost, "/v1/auth/login", "", `{"email":"jane@example.com","password":"nope"}`)
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(body["error"]).To(HaveKeyWithValue("message", "Invalid email or password"))
	})

	It("rejects protected routes without a token", func() {
		status, _ := call(http.MethodGet, "/v1/bookings/BK-100", "", "")
		Expect(status).To(Equal(http.StatusUnauthorized))
	})

	It("walks a customer from booking view through signing to logout", func() {
		token := login("jane@example.com")

		By("viewing the booking with derived progress")
		status, body := call(http.MethodGet, "/v1/bookings/BK-100", token, "")
		Expect(status).To(Equal(http.StatusOK))
		progress := body["progress"].(map[string]any)
		Expect(progress["currentStage"]).To(Equal("reportGenerated"))
		Expect(progress["percentage"]).To(BeNumerically("~", 400.0/6.0, 1e-9))
		steps := progress["steps"].([]any)
		Expect(steps).To(HaveLen(7))
		Expect(steps[4]).To(HaveKeyWithValue("highlighted", true))
		Expect(steps[5]).To(HaveKeyWithValue("completed", false))

		By("opening the contract signing session")
		status, body = call(http.MethodGet, "/v1/bookings/BK-100/contract", token, "")
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["sessionUrl"]).To(Equal("https://sign.example.com/s/ct-1"))

		By("forwarding signing frame events")
		status, _ = call(http.MethodPost, "/v1/bookings/BK-100/contract/ct-1/events", token,
			`{"type":"session_view.document.loaded","payload":{"uuid":"doc-1"}}`)
		Expect(status).To(Equal(http.StatusOK))

		status, body = call(http.MethodPost, "/v1/bookings/BK-100/contract/ct-1/events", token,
			`{"type":"session_view.document.completed","payload":{"uuid":"doc-1"}}`)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(HaveKeyWithValue("accepted", true))
		Expect(body).To(HaveKeyWithValue("redirect", "/bookings/BK-100"))

		By("seeing the signed proposal highlighted")
		status, body = call(http.MethodGet, "/v1/bookings/BK-100/progress", token, "")
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["currentStage"]).To(Equal("proposalSigned"))
		Expect(body["steps"].([]any)[5]).To(HaveKeyWithValue("highlighted", true))

		By("reading the activity log")
		status, body = call(http.MethodGet, "/v1/bookings/BK-100/activity", token, "")
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["activity"]).To(HaveLen(3))
		Expect(log.entries[2].Kind).To(Equal(activity.KindContractAccepted))

		By("being refused admin routes")
		status, _ = call(http.MethodGet, "/v1/admin/auditors/images", token, "")
		Expect(status).To(Equal(http.StatusForbidden))

		By("logging out")
		status, _ = call(http.MethodPost, "/v1/auth/logout", token, "")
		Expect(status).To(Equal(http.StatusNoContent))
		status, _ = call(http.MethodGet, "/v1/me", token, "")
		Expect(status).To(Equal(http.StatusUnauthorized))
	})

	It("lets an admin attach an auditor to a booking", func() {
		token := login("ops@example.com")

		status, body := call(http.MethodGet, "/v1/admin/auditors/images", token, "")
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["images"]).To(HaveLen(1))

		status, _ = call(http.MethodPut, "/v1/admin/bookings/BK-100/auditor", token,
			`{"imageUrl":"https://cdn.example.com/a.png","description":"Lead auditor"}`)
		Expect(status).To(Equal(http.StatusOK))
		Expect(fake.auditor).To(HaveKeyWithValue("imageUrl", "https://cdn.example.com/a.png"))
		Expect(log.entries).To(ContainElement(HaveField("Kind", activity.KindAuditorUpdated)))
	})

	It("maps unknown bookings to 404", func() {
		token := login("jane@example.com")
		status, body := call(http.MethodGet, "/v1/bookings/BK-404", token, "")
		Expect(status).To(Equal(http.StatusNotFound))
		Expect(body["error"]).To(HaveKeyWithValue("code", "NOT_FOUND"))
	})
})
