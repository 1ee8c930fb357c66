package routes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"aigc.wiki/configs"
	"aigc.wiki/models"
	"aigc.wiki/pkg/session"
	"aigc.wiki/pkg/testutil"
	"aigc.wiki/pkg/token"
	"aigc.wiki/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	adminUser = "admin"
	adminPass = "admin123"
)

type testServer struct {
	app     *fiber.App
	handler http.Handler
	db      *gorm.DB
	tokens  *token.Service
}

func newServer(t *testing.T) *testServer {
	return newServerIn(t, configs.EnvDevelopment)
}

func newServerIn(t *testing.T, env string) *testServer {
	t.Helper()
	db := testutil.NewSeededDB(t, adminUser, adminPass)
	cfg := configs.Config{
		Env:             env,
		Secret:          []byte("routes-test-secret-0123456789abcd"),
		UploadDir:       t.TempDir(),
		UploadURLPrefix: "/images/uploads",
	}
	tokens := token.New(cfg.Secret)
	app := routes.New(routes.Deps{Config: cfg, DB: db, Tokens: tokens})
	return &testServer{app: app, handler: fiberHandler(app), db: db, tokens: tokens}
}

// fiberHandler adapts app for apitest. The adaptor routes on RequestURI, which
// http.NewRequest leaves empty for client-style requests.
func fiberHandler(app *fiber.App) http.Handler {
	h := adaptor.FiberApp(app)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.RequestURI == "" {
			r.RequestURI = r.URL.RequestURI()
		}
		h(w, r)
	})
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	res := apitest.New().
		Handler(s.handler).
		Post("/api/auth/login").
		JSON(fmt.Sprintf(`{"username":%q,"password":%q}`, adminUser, adminPass)).
		Expect(t).
		Status(http.StatusOK).
		CookiePresent(session.CookieName).
		End()
	for _, c := range res.Response.Cookies() {
		if c.Name == session.CookieName {
			return c.Value
		}
	}
	t.Fatal("no session cookie")
	return ""
}

func (s *testServer) cardCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(&models.Card{}).Count(&n).Error)
	return n
}

func (s *testServer) createCard(t *testing.T, cookie, body string) string {
	t.Helper()
	res := apitest.New().
		Handler(s.handler).
		Post("/api/cards").
		Cookie(session.CookieName, cookie).
		JSON(body).
		Expect(t).
		Status(http.StatusCreated).
		End()
	var card models.Card
	require.NoError(t, json.NewDecoder(res.Response.Body).Decode(&card))
	require.NotEmpty(t, card.ID)
	return card.ID
}

func TestLoginThenMe(t *testing.T) {
	s := newServer(t)
	cookie := s.login(t)

	apitest.New().
		Handler(s.handler).
		Get("/api/auth/me").
		Cookie(session.CookieName, cookie).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$.authenticated`, true)).
		Assert(jsonpath.Equal(`$.admin.username`, adminUser)).
		Assert(jsonpath.Present(`$.admin.id`)).
		End()
}

func TestLoginResponseAndCookieAttributes(t *testing.T) {
	s := newServer(t)
	res := apitest.New().
		Handler(s.handler).
		Post("/api/auth/login").
		JSON(`{"username":"admin","password":"admin123"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$.success`, true)).
		Assert(jsonpath.Equal(`$.admin.username`, "admin")).
		Assert(jsonpath.NotPresent(`$.admin.passwordHash`)).
		End()

	setCookie := res.Response.Header.Get("Set-Cookie")
	lower := strings.ToLower(setCookie)
	assert.Contains(t, lower, "httponly")
	assert.Contains(t, lower, "samesite=lax")
	assert.Contains(t, lower, "max-age=86400")
	assert.Contains(t, lower, "path=/")
	assert.NotContains(t, lower, "secure", "development cookies are not Secure")
}

func TestLoginCookieIsSecureInProduction(t *testing.T) {
	s := newServerIn(t, configs.EnvProduction)
	res := apitest.New().
		Handler(s.handler).
		Post("/api/auth/login").
		JSON(`{"username":"admin","password":"admin123"}`).
		Expect(t).
		Status(http.StatusOK).
		CookiePresent(session.CookieName).
		End()

	lower := strings.ToLower(res.Response.Header.Get("Set-Cookie"))
	assert.Contains(t, lower, "secure")
	assert.Contains(t, lower, "httponly")
	assert.Contains(t, lower, "samesite=lax")

	res = apitest.New().
		Handler(s.handler).
		Post("/api/auth/logout").
		Expect(t).
		Status(http.StatusOK).
		End()
	assert.Contains(t, strings.ToLower(res.Response.Header.Get("Set-Cookie")), "secure")
}

func TestLoginBadCredentials(t *testing.T) {
	s := newServer(t)
	for _, body := range []string{
		`{"username":"admin","password":"wrong"}`,
		`{"username":"nobody","password":"admin123"}`,
	} {
		apitest.New().
			Handler(s.handler).
			Post("/api/auth/login").
			JSON(body).
			Expect(t).
			Status(http.StatusUnauthorized).
			CookieNotPresent(session.CookieName).
			Assert(jsonpath.Present(`$.error`)).
			End()
	}
}

func TestLoginMissingFields(t *testing.T) {
	s := newServer(t)
	apitest.New().
		Handler(s.handler).
		Post("/api/auth/login").
		JSON(`{"username":"admin"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		CookieNotPresent(session.CookieName).
		End()
}

func TestMeWithoutSession(t *testing.T) {
	s := newServer(t)
	apitest.New().
		Handler(s.handler).
		Get("/api/auth/me").
		Expect(t).
		Status(http.StatusOK).
		Body(`{"authenticated":false}`).
		End()

	apitest.New().
		Handler(s.handler).
		Get("/api/auth/me").
		Cookie(session.CookieName, "forged").
		Expect(t).
		Status(http.StatusOK).
		Body(`{"authenticated":false}`).
		End()
}

func TestLogoutClearsCookie(t *testing.T) {
	s := newServer(t)
	cookie := s.login(t)

	res := apitest.New().
		Handler(s.handler).
		Post("/api/auth/logout").
		Cookie(session.CookieName, cookie).
		Expect(t).
		Status(http.StatusOK).
		Body(`{"success":true}`).
		End()

	var cleared bool
	for _, c := range res.Response.Cookies() {
		if c.Name == session.CookieName {
			cleared = c.Value == "" && (c.MaxAge < 0 || c.Expires.Before(time.Now()))
		}
	}
	assert.True(t, cleared)
}

func TestProtectedEndpointsRequireSession(t *testing.T) {
	s := newServer(t)
	id := s.createCard(t, s.login(t), `{"title":"keep me"}`)

	requests := []*apitest.Request{
		apitest.New().Handler(s.handler).Post("/api/cards").JSON(`{"title":"x"}`),
		apitest.New().Handler(s.handler).Put("/api/cards/" + id).JSON(`{"title":"changed"}`),
		apitest.New().Handler(s.handler).Delete("/api/cards/" + id),
		apitest.New().Handler(s.handler).Post("/api/upload"),
		apitest.New().Handler(s.handler).Post("/api/cards").Cookie(session.CookieName, "bogus").JSON(`{"title":"x"}`),
	}
	for _, r := range requests {
		r.Expect(t).
			Status(http.StatusUnauthorized).
			Assert(jsonpath.Equal(`$.error`, "unauthorized")).
			End()
	}

	assert.Equal(t, int64(1), s.cardCount(t))
	apitest.New().
		Handler(s.handler).
		Get("/api/cards/" + id).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$.title`, "keep me")).
		End()
}

func TestExpiredSessionIsRejected(t *testing.T) {
	s := newServer(t)
	var admin models.Admin
	require.NoError(t, s.db.First(&admin).Error)

	old := token.New([]byte("routes-test-secret-0123456789abcd"),
		token.WithClock(func() time.Time { return time.Now().Add(-25 * time.Hour) }))
	tok, err := old.Issue(token.Claims{ID: admin.ID, Username: admin.Username})
	require.NoError(t, err)

	apitest.New().
		Handler(s.handler).
		Post("/api/cards").
		Cookie(session.CookieName, tok).
		JSON(`{"title":"late"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
	assert.Zero(t, s.cardCount(t))
}

func TestCreateCardEmptyTitle(t *testing.T) {
	s := newServer(t)
	cookie := s.login(t)

	for _, body := range []string{`{"title":""}`, `{"title":"   "}`, `{}`} {
		apitest.New().
			Handler(s.handler).
			Post("/api/cards").
			Cookie(session.CookieName, cookie).
			JSON(body).
			Expect(t).
			Status(http.StatusBadRequest).
			Assert(jsonpath.Equal(`$.error`, "title is required")).
			End()
	}
	assert.Zero(t, s.cardCount(t))
}

func TestCreateCardMalformedBody(t *testing.T) {
	s := newServer(t)
	apitest.New().
		Handler(s.handler).
		Post("/api/cards").
		Cookie(session.CookieName, s.login(t)).
		JSON(`{"title":`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Contains(`$.error`, "invalid card payload")).
		End()
	assert.Zero(t, s.cardCount(t))
}

func TestCreateCardRequiresJSONContentType(t *testing.T) {
	s := newServer(t)
	cookie := s.login(t)

	apitest.New().
		Handler(s.handler).
		Post("/api/cards").
		Cookie(session.CookieName, cookie).
		Body(`{"title":"no content type"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Contains(`$.error`, "invalid card payload")).
		End()

	apitest.New().
		Handler(s.handler).
		Post("/api/cards").
		Cookie(session.CookieName, cookie).
		ContentType("text/plain").
		Body(`{"title":"plain text"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
	assert.Zero(t, s.cardCount(t))
}

func TestCardRoundTripParsesNumbers(t *testing.T) {
	s := newServer(t)
	id := s.createCard(t, s.login(t), `{"title":"T","cfg":"7.5","steps":"30","seed":"42","prompt":""}`)

	apitest.New().
		Handler(s.handler).
		Get("/api/cards/" + id).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$.title`, "T")).
		Assert(jsonpath.Equal(`$.cfg`, 7.5)).
		Assert(jsonpath.Equal(`$.steps`, float64(30))).
		Assert(jsonpath.Equal(`$.seed`, "42")).
		Assert(jsonpath.Len(`$.loras`, 0)).
		End()
}

func TestUpdateCardReplacesLoras(t *testing.T) {
	s := newServer(t)
	cookie := s.login(t)
	id := s.createCard(t, cookie, `{"title":"X","loras":[{"name":"a","weight":0.5}]}`)

	apitest.New().
		Handler(s.handler).
		Put("/api/cards/" + id).
		Cookie(session.CookieName, cookie).
		JSON(`{"title":"X","loras":[{"name":"b","weight":"0.8"}]}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len(`$.loras`, 1)).
		Assert(jsonpath.Equal(`$.loras[0].name`, "b")).
		Assert(jsonpath.Equal(`$.loras[0].weight`, 0.8)).
		End()

	var loras []models.Lora
	require.NoError(t, s.db.Where("card_id = ?", id).Find(&loras).Error)
	require.Len(t, loras, 1)
	assert.Equal(t, "b", loras[0].Name)
}

func TestUpdateAndDeleteUnknownCard(t *testing.T) {
	s := newServer(t)
	cookie := s.login(t)

	apitest.New().
		Handler(s.handler).
		Put("/api/cards/missing").
		Cookie(session.CookieName, cookie).
		JSON(`{"title":"x"}`).
		Expect(t).
		Status(http.StatusNotFound).
		Assert(jsonpath.Equal(`$.error`, "card not found")).
		End()

	apitest.New().
		Handler(s.handler).
		Put("/api/cards/missing").
		Cookie(session.CookieName, cookie).
		JSON(`{"title":" "}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()

	apitest.New().
		Handler(s.handler).
		Delete("/api/cards/missing").
		Cookie(session.CookieName, cookie).
		Expect(t).
		Status(http.StatusNotFound).
		End()

	apitest.New().
		Handler(s.handler).
		Get("/api/cards/missing").
		Expect(t).
		Status(http.StatusNotFound).
		End()
}

func TestDeleteCardCascades(t *testing.T) {
	s := newServer(t)
	cookie := s.login(t)
	id := s.createCard(t, cookie, `{"title":"X","loras":[{"name":"a","weight":1},{"name":"b","weight":0.2}]}`)

	apitest.New().
		Handler(s.handler).
		Delete("/api/cards/" + id).
		Cookie(session.CookieName, cookie).
		Expect(t).
		Status(http.StatusOK).
		Body(`{"success":true}`).
		End()

	var n int64
	require.NoError(t, s.db.Model(&models.Lora{}).Where("card_id = ?", id).Count(&n).Error)
	assert.Zero(t, n)
	assert.Zero(t, s.cardCount(t))
}

func TestListCardsETag(t *testing.T) {
	s := newServer(t)
	cookie := s.login(t)
	s.createCard(t, cookie, `{"title":"first"}`)
	s.createCard(t, cookie, `{"title":"second"}`)

	res := apitest.New().
		Handler(s.handler).
		Get("/api/cards").
		Expect(t).
		Status(http.StatusOK).
		HeaderPresent("ETag").
		Assert(jsonpath.Len(`$`, 2)).
		End()
	tag := res.Response.Header.Get("ETag")

	apitest.New().
		Handler(s.handler).
		Get("/api/cards").
		Header("If-None-Match", tag).
		Expect(t).
		Status(http.StatusNotModified).
		End()

	s.createCard(t, cookie, `{"title":"third"}`)
	apitest.New().
		Handler(s.handler).
		Get("/api/cards").
		Header("If-None-Match", tag).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len(`$`, 3)).
		End()
}

// multipartBody builds a single-file form with an explicit part Content-Type.
func multipartBody(t *testing.T, fileName, contentType string, data []byte) (string, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.String(), w.FormDataContentType()
}

func (s *testServer) upload(t *testing.T, cookie, fileName, contentType string, data []byte) apitest.Result {
	t.Helper()
	body, ct := multipartBody(t, fileName, contentType, data)
	return apitest.New().
		Handler(s.handler).
		Post("/api/upload").
		Cookie(session.CookieName, cookie).
		ContentType(ct).
		Body(body).
		Expect(t).
		End()
}

func TestUploadRejectsPDFAndOversize(t *testing.T) {
	s := newServer(t)
	cookie := s.login(t)

	res := s.upload(t, cookie, "doc.pdf", "application/pdf", []byte("%PDF-1.4"))
	assert.Equal(t, http.StatusBadRequest, res.Response.StatusCode)

	res = s.upload(t, cookie, "huge.jpg", "image/jpeg", make([]byte, 11<<20))
	assert.Equal(t, http.StatusBadRequest, res.Response.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(res.Response.Body).Decode(&body))
	assert.Equal(t, "file must not exceed 10MB", body["error"])
}

func TestUploadMissingFile(t *testing.T) {
	s := newServer(t)
	apitest.New().
		Handler(s.handler).
		Post("/api/upload").
		Cookie(session.CookieName, s.login(t)).
		ContentType("multipart/form-data; boundary=x").
		Body("--x--\r\n").
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal(`$.error`, "no file selected")).
		End()
}

func TestUploadPNGIsRetrievable(t *testing.T) {
	s := newServer(t)
	data := bytes.Repeat([]byte("PNGDATA!"), 256<<10) // 2 MiB

	res := s.upload(t, s.login(t), "shot.png", "image/png", data)
	require.Equal(t, http.StatusOK, res.Response.StatusCode)
	var body struct {
		Success  bool   `json:"success"`
		URL      string `json:"url"`
		FileName string `json:"fileName"`
	}
	require.NoError(t, json.NewDecoder(res.Response.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "/images/uploads/"+body.FileName, body.URL)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, body.URL, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestHealthAndNotFound(t *testing.T) {
	s := newServer(t)
	apitest.New().
		Handler(s.handler).
		Get("/healthz").
		Expect(t).
		Status(http.StatusOK).
		Body(`{"status":"ok"}`).
		End()

	apitest.New().
		Handler(s.handler).
		Get("/api/nope").
		Expect(t).
		Status(http.StatusNotFound).
		Body(`{"error":"resource not found"}`).
		End()

	apitest.New().
		Handler(s.handler).
		Get("/api/nope").
		Header("Accept", "text/html").
		Expect(t).
		Status(http.StatusNotFound).
		Body(`{"error":"resource not found"}`).
		End()

	for _, path := range []string{"/apix", "/apidocs/x", "/nope"} {
		apitest.New().
			Handler(s.handler).
			Get(path).
			Header("Accept", "text/html").
			Expect(t).
			Status(http.StatusNotFound).
			Assert(bodyContains("Page not found")).
			End()
	}
}

func TestPages(t *testing.T) {
	s := newServer(t)

	apitest.New().
		Handler(s.handler).
		Get("/").
		Expect(t).
		Status(http.StatusOK).
		Assert(bodyContains("No cards yet.")).
		End()

	apitest.New().
		Handler(s.handler).
		Get("/admin/cards").
		Expect(t).
		Status(http.StatusFound).
		Header("Location", "/login").
		End()

	cookie := s.login(t)
	id := s.createCard(t, cookie, `{"title":"Neon city","modelName":"sdxl"}`)

	apitest.New().
		Handler(s.handler).
		Get("/").
		Expect(t).
		Status(http.StatusOK).
		Assert(bodyContains("Neon city", "sdxl", "/cards/"+id)).
		End()

	apitest.New().
		Handler(s.handler).
		Get("/admin/cards").
		Cookie(session.CookieName, cookie).
		Expect(t).
		Status(http.StatusOK).
		Assert(bodyContains("Manage cards", "Neon city")).
		End()

	apitest.New().
		Handler(s.handler).
		Get("/login").
		Cookie(session.CookieName, cookie).
		Expect(t).
		Status(http.StatusFound).
		Header("Location", "/admin/cards").
		End()
}

func TestCardDetailPage(t *testing.T) {
	s := newServer(t)
	id := s.createCard(t, s.login(t), `{
		"title":"Harbor at dusk",
		"fullImage":"/images/uploads/harbor.png",
		"modelName":"dreamshaper",
		"modelType":"SD1.5",
		"sampler":"Euler a",
		"cfg":"7.5",
		"steps":"28",
		"vae":"vae-ft-mse",
		"upscaler":"4x-UltraSharp",
		"seed":"123456789",
		"size":"512x768",
		"prompt":"harbor lights",
		"negativePrompt":"blurry",
		"loras":[{"name":"film-grain","weight":"0.6"}]
	}`)

	apitest.New().
		Handler(s.handler).
		Get("/cards/"+id).
		Expect(t).
		Status(http.StatusOK).
		Assert(bodyContains(
			"Harbor at dusk", "/images/uploads/harbor.png", "Added ",
			"dreamshaper", "SD1.5", "Euler a", "7.5", "28",
			"vae-ft-mse", "4x-UltraSharp", "123456789", "512x768",
			"film-grain:0.6", "harbor lights", "blurry",
		)).
		End()

	apitest.New().
		Handler(s.handler).
		Get("/cards/does-not-exist").
		Expect(t).
		Status(http.StatusNotFound).
		Assert(bodyContains("Page not found")).
		End()
}

func bodyContains(wants ...string) apitest.Assert {
	return func(res *http.Response, _ *http.Request) error {
		b, err := io.ReadAll(res.Body)
		if err != nil {
			return err
		}
		for _, want := range wants {
			if !strings.Contains(string(b), want) {
				return fmt.Errorf("body does not contain %q", want)
			}
		}
		return nil
	}
}
