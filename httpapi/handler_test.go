package httpapi_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/spektr-org/pulse/dashboard"
	"github.com/spektr-org/pulse/dataset"
	"github.com/spektr-org/pulse/httpapi"
)

func date(s string) time.Time {
	t, err := time.Parse(dataset.DateLayout, s)
	Expect(err).NotTo(HaveOccurred())
	return t
}

func fixture() *dataset.Datasets {
	return dataset.NewDatasets(
		[]dataset.MemberRecord{
			{UserID: "U1", DisplayName: "Ada", MessagesPosted: 10, DaysActive: 3},
			{UserID: "U2", DisplayName: "Linus", MessagesPosted: 0, DaysActive: 40},
		},
		[]dataset.ChannelRecord{
			{ChannelID: "C1", Name: "general", MessagesPosted: 50, TotalMembership: 10},
		},
		[]dataset.WorkspaceDay{
			{Date: date("2024-01-01"), DailyActivePeople: 10, MessagesPosted: 100, TotalEnabledMembers: 50},
			{Date: date("2024-01-02"), DailyActivePeople: 20, MessagesPosted: 200, TotalEnabledMembers: 55},
		},
	)
}

var _ = Describe("Handler", func() {
	var (
		server *httpapi.Server
		router *gin.Engine
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		server = httpapi.NewServer(dashboard.WithTopN(5))
		router = gin.New()
		httpapi.SetupRoutes(router, httpapi.NewHandler(server))
	})

	get := func(path string, params url.Values) *httptest.ResponseRecorder {
		if len(params) > 0 {
			path += "?" + params.Encode()
		}
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decode := func(w *httptest.ResponseRecorder) map[string]interface{} {
		var resp map[string]interface{}
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		return resp
	}

	Context("before any data is loaded", func() {
		It("reports unavailable health", func() {
			Expect(get("/health", nil).Code).To(Equal(http.StatusServiceUnavailable))
		})

		It("returns 503 with the load error", func() {
			server.SetError(errors.New("members.csv: no such file"))

			w := get("/api/v1/metrics", nil)

			Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
			Expect(decode(w)["error"]).To(ContainSubstring("members.csv"))
		})
	})

	Context("with datasets", func() {
		BeforeEach(func() {
			server.SetDatasets(fixture())
		})

		It("returns 200 on health", func() {
			w := get("/health", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["status"]).To(Equal("ok"))
		})

		It("computes metrics over the full range by default", func() {
			w := get("/api/v1/metrics", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["total_members"]).To(BeEquivalentTo(2))
			Expect(resp["avg_messages_per_member"]).To(BeEquivalentTo(5))
			Expect(resp["pct_members_with_messages"]).To(BeEquivalentTo(50))
			Expect(resp["peak_daily_active"]).To(BeEquivalentTo(20))
			Expect(resp["latest_enabled_members"]).To(BeEquivalentTo(55))
		})

		It("applies the date range and the message threshold", func() {
			w := get("/api/v1/metrics", url.Values{
				"start":        {"2024-01-01"},
				"end":          {"2024-01-01"},
				"min_messages": {"1"},
			})

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["total_members"]).To(BeEquivalentTo(1))
			Expect(resp["peak_daily_active"]).To(BeEquivalentTo(10))
			Expect(resp["latest_enabled_members"]).To(BeEquivalentTo(50))
		})

		It("narrows metrics to the selected retention groups", func() {
			w := get("/api/v1/metrics", url.Values{"retention": {"0-5 days"}})

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["total_members"]).To(BeEquivalentTo(1))
			Expect(resp["total_member_messages"]).To(BeEquivalentTo(10))
		})

		It("selects no days for a reversed range", func() {
			w := get("/api/v1/workspace", url.Values{"start": {"2024-01-02"}, "end": {"2024-01-01"}})

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["count"]).To(BeEquivalentTo(0))
		})

		It("treats a single date as a one-day range", func() {
			w := get("/api/v1/workspace", url.Values{"date": {"2024-01-02"}})

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["count"]).To(BeEquivalentTo(1))
		})

		It("falls back to the full range for unparsable dates", func() {
			w := get("/api/v1/workspace", url.Values{"start": {"yesterday"}, "end": {"today"}})

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["count"]).To(BeEquivalentTo(2))
		})

		It("returns 400 on a bad min_messages", func() {
			w := get("/api/v1/metrics", url.Values{"min_messages": {"lots"}})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 400 on an unknown retention group", func() {
			w := get("/api/v1/members", url.Values{"retention": {"forever"}})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("drills members down by retention group", func() {
			w := get("/api/v1/members", url.Values{"retention": {"30+ days"}})

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["count"]).To(BeEquivalentTo(1))
			Expect(resp["max_messages"]).To(BeEquivalentTo(10))
			members := resp["members"].([]interface{})
			Expect(members[0].(map[string]interface{})["user_id"]).To(Equal("U2"))
		})

		It("serves channel rows with a leaderboard table", func() {
			w := get("/api/v1/channels", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["count"]).To(BeEquivalentTo(1))
			Expect(resp["table"]).To(HaveKey("rows"))
		})

		It("serves every chart", func() {
			w := get("/api/v1/charts", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp).To(HaveKey("retention"))
			Expect(resp).To(HaveKey("message_distribution"))
			Expect(resp).To(HaveKey("engagement_ratio"))
		})

		It("summarizes the selected period", func() {
			w := get("/api/v1/summary", url.Values{"start": {"2024-01-02"}})

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["days_in_range"]).To(BeEquivalentTo(1))
			Expect(resp["selected"]).To(HaveKeyWithValue("start", "2024-01-02"))
		})

		It("keeps serving the previous data after a failed reload", func() {
			server.SetError(errors.New("boom"))

			Expect(get("/api/v1/metrics", nil).Code).To(Equal(http.StatusOK))
		})
	})
})
