package contahub_test

import (
	"context"
	"time"

	"github.com/Dgzikaa/zykor-sub003/internal/pkg/contahub"
	"github.com/Dgzikaa/zykor-sub003/internal/testhelpers"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const vendorBase = "https://vendor.test"

var _ = Describe("Nonce", func() {
	It("formats the current time down to the millisecond", func() {
		nonce := contahub.Nonce()

		Expect(nonce).To(MatchRegexp(`^\d{17}$`))

		parsed, err := time.ParseInLocation("20060102150405", nonce[:14], time.Local)
		Expect(err).NotTo(HaveOccurred())
		Expect(parsed).To(BeTemporally("~", time.Now(), time.Minute))
	})

	It("is recomputed on every call", func() {
		first := contahub.Nonce()
		time.Sleep(2 * time.Millisecond)
		second := contahub.Nonce()

		Expect(second).NotTo(Equal(first))
	})
})

var _ = Describe("ParseList", func() {
	It("accepts a bare array", func() {
		records := contahub.ParseList([]byte(`[{"a":1},{"a":2}]`))
		Expect(records).To(HaveLen(2))
		Expect(string(records[0])).To(MatchJSON(`{"a":1}`))
	})

	It("accepts a data envelope", func() {
		records := contahub.ParseList([]byte(`{"data":[{"a":1}]}`))
		Expect(records).To(HaveLen(1))
	})

	It("accepts a list envelope", func() {
		records := contahub.ParseList([]byte(`{"list":[{"a":1},{"a":2},{"a":3}]}`))
		Expect(records).To(HaveLen(3))
	})

	It("yields nothing for other shapes", func() {
		Expect(contahub.ParseList([]byte(`{"ok":true}`))).To(BeEmpty())
		Expect(contahub.ParseList([]byte(`not json at all`))).To(BeEmpty())
	})
})

var _ = Describe("Client", func() {
	var (
		client *contahub.Client
		ctx    context.Context
	)

	BeforeEach(func() {
		testhelpers.Activate()

		client = contahub.New(vendorBase)
		client.UseDefaultClient()
		ctx = context.Background()
	})

	AfterEach(func() {
		testhelpers.Deactivate()
	})

	Describe("Login", func() {
		It("extracts the session token from the cookie header", func() {
			testhelpers.New(vendorBase).
				PostPrefix("/login/").Reply(200).
				BodyString(`{}`).
				Header("Set-Cookie", "JSESSIONID=abc123; Path=/")

			session, err := client.Login(ctx, "ops@bar.com", "secret")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(session)).To(Equal("JSESSIONID=abc123; Path=/"))
		})

		It("fails with an auth error on a rejected login", func() {
			testhelpers.New(vendorBase).
				PostPrefix("/login/").Reply(401).
				BodyString(`{"error":"bad credentials"}`)

			_, err := client.Login(ctx, "ops@bar.com", "wrong")
			Expect(err).To(BeAssignableToTypeOf(&contahub.AuthError{}))
		})

		It("fails with an auth error when no cookie comes back", func() {
			testhelpers.New(vendorBase).
				PostPrefix("/login/").Reply(200).
				BodyString(`{}`)

			_, err := client.Login(ctx, "ops@bar.com", "secret")
			Expect(err).To(BeAssignableToTypeOf(&contahub.AuthError{}))
		})
	})

	Describe("ExecQuery", func() {
		It("collapses the range to a single day and returns the list", func() {
			testhelpers.New(vendorBase).
				GetPrefix("/execQuery/").
				Query("qry", "77").
				Query("d0", "2024-10-15T00:00:00-03:00").
				Query("d1", "2024-10-15T00:00:00-03:00").
				Query("emp", "3").
				Query("nfe", "1").
				Reply(200).
				BodyString(`{"list":[{"vd":1},{"vd":2}]}`)

			records, err := client.ExecQuery(ctx, "cookie", contahub.QuerySpec{
				QueryID:      77,
				Date:         "2024-10-15",
				VendorUnitID: 3,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
			Expect(testhelpers.IsDone()).To(BeTrue())
		})

		It("fails on a non-success status", func() {
			testhelpers.New(vendorBase).
				GetPrefix("/execQuery/").Reply(500).
				BodyString(`too much data`)

			_, err := client.ExecQuery(ctx, "cookie", contahub.QuerySpec{
				QueryID:      77,
				Date:         "2024-10-15",
				VendorUnitID: 3,
			})
			Expect(err).To(MatchError(ContainSubstring("contahub error 500")))
		})
	})

	Describe("GetShifts and ResolveShifts", func() {
		It("keeps only shifts of the requested business date", func() {
			testhelpers.New(vendorBase).
				GetPrefix("/getTurnos").
				Query("emp", "3").
				Reply(200).
				BodyString(`[
					{"trn": 11, "trn_dtgerencial": "2024-10-14T00:00:00"},
					{"trn": 12, "trn_dtgerencial": "2024-10-15T00:00:00"},
					{"trn": 13, "trn_dtgerencial": "2024-10-15T00:00:00"}
				]`)

			shifts, err := client.ResolveShifts(ctx, "cookie", 3, "2024-10-15")
			Expect(err).NotTo(HaveOccurred())
			Expect(shifts).To(Equal([]int{12, 13}))
		})
	})
})
