package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/danghuy/secondcell/internal/adapters/httpserver"
	"github.com/danghuy/secondcell/internal/domain"
	"github.com/danghuy/secondcell/internal/usecase"
)

type memProducts struct {
	docs  map[string]domain.Product
	order []string
}

func (m *memProducts) Upsert(_ context.Context, p *domain.Product) error {
	if _, ok := m.docs[p.ID]; !ok {
		m.order = append(m.order, p.ID)
	}
	m.docs[p.ID] = *p
	return nil
}

func (m *memProducts) Insert(_ context.Context, p *domain.Product) error {
	return m.Upsert(context.Background(), p)
}

func (m *memProducts) Get(_ context.Context, id string) (*domain.Product, error) {
	p, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (m *memProducts) List(_ context.Context, _ domain.ProductQuery) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.docs[id])
	}
	return out, nil
}

func (m *memProducts) Delete(_ context.Context, id string) error {
	if _, ok := m.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.docs, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

type memStorage struct {
	uploads int
	deleted [][]string
}

func (m *memStorage) Upload(_ context.Context, _, _ string, _ []byte) (string, error) {
	m.uploads++
	return fmt.Sprintf("https://pub.example/%d.jpg", m.uploads), nil
}

func (m *memStorage) Delete(_ context.Context, keys []string) error {
	m.deleted = append(m.deleted, keys)
	return nil
}

type memLedger struct{ n int }

func (m *memLedger) Record(context.Context, *domain.Sale) error { m.n++; return nil }

type memSales struct{ sales []domain.Sale }

func (m *memSales) Append(_ context.Context, s *domain.Sale) error {
	m.sales = append(m.sales, *s)
	return nil
}
func (m *memSales) List(context.Context) ([]domain.Sale, error) { return m.sales, nil }

type memConvs struct{ byID map[string]domain.Conversation }

func (m *memConvs) Save(_ context.Context, c *domain.Conversation) error {
	m.byID[c.ID] = *c
	return nil
}
func (m *memConvs) Get(_ context.Context, id string) (*domain.Conversation, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}
func (m *memConvs) GetByUser(_ context.Context, user string) (*domain.Conversation, error) {
	for _, c := range m.byID {
		if c.UserID == user {
			cc := c
			return &cc, nil
		}
	}
	return nil, domain.ErrNotFound
}
func (m *memConvs) List(context.Context) ([]domain.Conversation, error) {
	var out []domain.Conversation
	for _, c := range m.byID {
		out = append(out, c)
	}
	return out, nil
}
func (m *memConvs) ListByUser(_ context.Context, user string) ([]domain.Conversation, error) {
	var out []domain.Conversation
	for _, c := range m.byID {
		if c.UserID == user {
			out = append(out, c)
		}
	}
	return out, nil
}
func (m *memConvs) Watch(context.Context, func()) error { return nil }

type memMsgs struct{ msgs []domain.Message }

func (m *memMsgs) Append(_ context.Context, msg *domain.Message) error {
	m.msgs = append(m.msgs, *msg)
	return nil
}
func (m *memMsgs) ListByConversation(_ context.Context, id string) ([]domain.Message, error) {
	var out []domain.Message
	for _, msg := range m.msgs {
		if msg.ConversationID == id {
			out = append(out, msg)
		}
	}
	return out, nil
}

type testEnv struct {
	srv     *httptest.Server
	storage *memStorage
	ledger  *memLedger
	token   string
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	products := &memProducts{docs: map[string]domain.Product{}}
	storage := &memStorage{}
	lg := &memLedger{}
	sales := &memSales{}
	convs := &memConvs{byID: map[string]domain.Conversation{}}
	msgs := &memMsgs{}

	inv := &usecase.InventoryUC{Products: products, Storage: storage, Ledger: lg, Sales: sales}
	cat := &usecase.CatalogUC{Products: products}
	chat := &usecase.ChatUC{Conversations: convs, Messages: msgs, AdminID: "admin-1"}

	h := httpserver.New(inv, cat, chat, sales, nil, httpserver.Options{
		AdminUser: "admin",
		AdminPass: "secret",
		Secret:    "test-secret",
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	env := &testEnv{srv: srv, storage: storage, ledger: lg}
	env.token = env.login(t)
	return env
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	form := url.Values{"user": {"admin"}, "pass": {"secret"}}
	resp, err := http.PostForm(e.srv.URL+"/admin/auth", form)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	return body.Token
}

func (e *testEnv) do(t *testing.T, method, path, contentType string, body *bytes.Buffer, authed bool) *http.Response {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req, err := http.NewRequest(method, e.srv.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func phoneForm(t *testing.T, imei, price string, withFile bool) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fields := map[string]string{
		"imei": imei, "type": "phone", "name": "iPhone 12",
		"price": price, "description": "second-hand", "brand": "Apple",
	}
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if withFile {
		fw, err := mw.CreateFormFile("image", "front.jpg")
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write([]byte("jpegbytes"))
	}
	_ = mw.Close()
	return buf, mw.FormDataContentType()
}

func TestMutatingRoutesRequireAuth(t *testing.T) {
	env := newEnv(t)
	body, ct := phoneForm(t, "123456789012345", "50000", false)
	resp := env.do(t, http.MethodPost, "/api/products", ct, body, false)
	defer resp.Body.Close()
	if resp.StatusCode != 401 {
		t.Fatalf("unauthenticated submit status = %d, want 401", resp.StatusCode)
	}
}

func TestUploadWithoutFilesReturnsEmptyList(t *testing.T) {
	env := newEnv(t)
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	_ = mw.WriteField("noop", "1")
	_ = mw.Close()

	resp := env.do(t, http.MethodPost, "/api/upload", mw.FormDataContentType(), buf, true)
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		ImageURLs []string `json:"imageUrls"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.ImageURLs == nil || len(body.ImageURLs) != 0 {
		t.Fatalf("imageUrls = %v, want empty array", body.ImageURLs)
	}
}

func TestSubmitListAndSellPhone(t *testing.T) {
	env := newEnv(t)
	const imei = "123456789012345"

	body, ct := phoneForm(t, imei, "50000", true)
	resp := env.do(t, http.MethodPost, "/api/products", ct, body, true)
	if resp.StatusCode != 201 {
		t.Fatalf("submit status = %d", resp.StatusCode)
	}
	resp.Body.Close()
	if env.storage.uploads != 1 {
		t.Fatalf("uploads = %d, want 1", env.storage.uploads)
	}

	// re-submit with a new price must update in place
	body, ct = phoneForm(t, imei, "45000", false)
	resp = env.do(t, http.MethodPost, "/api/products", ct, body, true)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/products?type=phone", "", nil, false)
	var list struct {
		Products []domain.Product `json:"products"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if len(list.Products) != 1 || list.Products[0].Price != 45000 {
		t.Fatalf("products = %+v, want one phone at 45000", list.Products)
	}

	sold := bytes.NewBufferString(`{"customerName":"Linh","buyingPrice":30000,"sellingPrice":44000}`)
	resp = env.do(t, http.MethodPost, "/api/products/"+imei+"/sold", "application/json", sold, true)
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("mark sold status = %d", resp.StatusCode)
	}
	if env.ledger.n != 1 {
		t.Fatal("ledger not told about the sale")
	}

	resp = env.do(t, http.MethodGet, "/api/products", "", nil, false)
	_ = json.NewDecoder(resp.Body).Decode(&list)
	resp.Body.Close()
	if len(list.Products) != 0 {
		t.Fatal("sold phone still listed")
	}
}

func TestSubmitRejectsBadPrice(t *testing.T) {
	env := newEnv(t)
	body, ct := phoneForm(t, "123456789012345", "not-a-number", false)
	resp := env.do(t, http.MethodPost, "/api/products", ct, body, true)
	defer resp.Body.Close()
	if resp.StatusCode != 400 {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var e struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
		t.Fatalf("expected an error payload, got %v / %v", e, err)
	}
}

func TestDeleteImagesSkipsInvalidURLs(t *testing.T) {
	env := newEnv(t)
	payload := bytes.NewBufferString(`{"imageUrls":["https://pub.example/abc.jpg","://bad url"]}`)
	resp := env.do(t, http.MethodPost, "/api/images/delete", "application/json", payload, true)
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(env.storage.deleted) != 1 || len(env.storage.deleted[0]) != 1 || env.storage.deleted[0][0] != "abc.jpg" {
		t.Fatalf("deleted = %v, want just abc.jpg", env.storage.deleted)
	}
}

func TestUnreadEndpoint(t *testing.T) {
	env := newEnv(t)

	open := bytes.NewBufferString(`{"userId":"user-42","userName":"Nam"}`)
	resp := env.do(t, http.MethodPost, "/api/chat/conversations", "application/json", open, false)
	var created struct {
		Conversation domain.Conversation `json:"conversation"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	msg := bytes.NewBufferString(`{"conversationId":"` + created.Conversation.ID + `","senderId":"user-42","text":"hello"}`)
	resp = env.do(t, http.MethodPost, "/api/chat/messages", "application/json", msg, false)
	resp.Body.Close()

	check := func(viewer string, want bool) {
		resp := env.do(t, http.MethodGet, "/api/chat/unread?viewer="+viewer, "", nil, false)
		defer resp.Body.Close()
		var body struct {
			HasUnread bool `json:"hasUnread"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.HasUnread != want {
			t.Fatalf("hasUnread(%s) = %v, want %v", viewer, body.HasUnread, want)
		}
	}
	check("admin-1", true)
	check("user-42", false)
}

func TestProductNotFound(t *testing.T) {
	env := newEnv(t)
	resp := env.do(t, http.MethodGet, "/api/products/999999999999999", "", nil, false)
	defer resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestErrNotFoundIsStable(t *testing.T) {
	// guard against the taxonomy wrapping not-found into DocumentError
	err := domain.NewDocumentError("get", domain.ErrNotFound)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatal("not-found must survive wrapping")
	}
	if strings.Contains(err.Error(), "document") {
		t.Fatal("not-found must not be dressed as a DocumentError")
	}
}
