package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dukastock-api/internal/application/access"
	"github.com/jhoicas/dukastock-api/internal/application/auth"
	"github.com/jhoicas/dukastock-api/internal/application/dto"
	"github.com/jhoicas/dukastock-api/internal/application/inventory"
	"github.com/jhoicas/dukastock-api/internal/application/lending"
	"github.com/jhoicas/dukastock-api/internal/application/sales"
	"github.com/jhoicas/dukastock-api/internal/application/usecase"
	"github.com/jhoicas/dukastock-api/internal/infrastructure/cache"
	"github.com/jhoicas/dukastock-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/dukastock-api/internal/interfaces/http"
)

// newAPI arma la API completa sobre el almacén en memoria.
func newAPI(t *testing.T) *fiber.App {
	t.Helper()
	st := memory.New()
	guard := access.NewGuard(st.Users())
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC: auth.NewAuthUseCase(st.Users(), st.Businesses(), auth.JWTConfig{
			Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
		}),
		BusinessUC: usecase.NewBusinessUseCase(guard, st.Businesses()),
		StoreUC:    usecase.NewStoreUseCase(guard, st.Stores()),
		UserUC:     usecase.NewUserUseCase(guard, st.Users(), st.Stores()),
		ItemUC:     inventory.NewItemUseCase(guard, st.Items(), st.Stores(), st, nil),
		AuditUC:    inventory.NewAuditUseCase(guard, st.Items(), st.Lends(), 7, nil),
		LendingUC:  lending.NewUseCase(guard, st, st.Items(), st.Lends(), st.Stores(), st.Users(), nil),
		SalesUC:    sales.NewUseCase(guard, st, st.Sales(), st.Returns(), cache.NewMemoryIdempotencyStore(time.Hour), nil),
		JWTSecret:  testJWTSecret,
	})
	return app
}

type call struct {
	method string
	path   string
	body   any
	token  string
	header map[string]string
}

func send(t *testing.T, app *fiber.App, c call, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range c.header {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// setupOwner crea negocio, registra al dueño, inicia sesión y crea dos dukas.
func setupOwner(t *testing.T, app *fiber.App) (token, userID, s1, s2 string) {
	t.Helper()
	var biz dto.BusinessResponse
	require.Equal(t, http.StatusCreated, send(t, app, call{method: http.MethodPost, path: "/api/businesses",
		body: fiber.Map{"name": "Duka Shoes"}}, &biz))

	creds := fiber.Map{"email": "Owner@Duka.test", "password": "supersecreto", "business_id": biz.ID}
	require.Equal(t, http.StatusCreated, send(t, app, call{method: http.MethodPost, path: "/api/auth/register", body: creds}, nil))

	var login dto.LoginResponse
	require.Equal(t, http.StatusOK, send(t, app, call{method: http.MethodPost, path: "/api/auth/login",
		body: fiber.Map{"email": "owner@duka.test", "password": "supersecreto"}}, &login))
	require.NotEmpty(t, login.Token)

	var st1, st2 dto.StoreResponse
	require.Equal(t, http.StatusCreated, send(t, app, call{method: http.MethodPost, path: "/api/stores",
		body: fiber.Map{"name": "Gikomba"}, token: login.Token}, &st1))
	require.Equal(t, http.StatusCreated, send(t, app, call{method: http.MethodPost, path: "/api/stores",
		body: fiber.Map{"name": "Toi"}, token: login.Token}, &st2))
	return login.Token, login.User.ID, st1.ID, st2.ID
}

func createItem(t *testing.T, app *fiber.App, token, storeID string, stock, incomplete int) dto.ItemResponse {
	t.Helper()
	var item dto.ItemResponse
	status := send(t, app, call{method: http.MethodPost, path: "/api/inventory", token: token, body: fiber.Map{
		"store_id": storeID, "at_no": "A12", "name": "Air Max", "brand": "nike",
		"sizes": "40, 41", "colors": []string{"Black"}, "price": 3500,
		"stock": stock, "incomplete_pairs": incomplete,
	}}, &item)
	require.Equal(t, http.StatusCreated, status)
	return item
}

func TestAPI_FlujoVentaConIdempotencia(t *testing.T) {
	app := newAPI(t)
	token, _, s1, _ := setupOwner(t, app)
	item := createItem(t, app, token, s1, 5, 0)
	assert.Equal(t, []string{"40", "41"}, item.Sizes)
	assert.Equal(t, "Nike", item.Brand)

	sale := fiber.Map{
		"product_id": item.ID, "size": "40", "quantity": 1, "price": 3500,
		"payments": []fiber.Map{{"method": "cash", "amount": 3500}},
	}
	key := map[string]string{apphttp.HeaderIdempotencyKey: "pos-1-0001"}

	var first, again dto.SaleResponse
	require.Equal(t, http.StatusCreated, send(t, app, call{method: http.MethodPost, path: "/api/sales",
		token: token, body: sale, header: key}, &first))
	require.Equal(t, http.StatusOK, send(t, app, call{method: http.MethodPost, path: "/api/sales",
		token: token, body: sale, header: key}, &again))
	assert.Equal(t, first.ID, again.ID)
	assert.True(t, again.Replayed)

	var after dto.ItemResponse
	require.Equal(t, http.StatusOK, send(t, app, call{method: http.MethodGet, path: "/api/inventory/" + item.ID, token: token}, &after))
	assert.Equal(t, 4, after.Stock, "el reenvío no descuenta dos veces")

	var ret dto.ReturnResponse
	require.Equal(t, http.StatusCreated, send(t, app, call{method: http.MethodPost, path: "/api/sales/" + first.ID + "/return",
		token: token, body: fiber.Map{"reason": "talla equivocada"}}, &ret))
	assert.True(t, ret.InventoryRestored)
	assert.Equal(t, http.StatusConflict, send(t, app, call{method: http.MethodPost, path: "/api/sales/" + first.ID + "/return",
		token: token, body: fiber.Map{"reason": "otra vez"}}, nil))

	var returns dto.ReturnListResponse
	require.Equal(t, http.StatusOK, send(t, app, call{method: http.MethodGet, path: "/api/returns?store_id=all", token: token}, &returns))
	assert.Len(t, returns.Items, 1)
}

func TestAPI_MapeoDeErrores(t *testing.T) {
	app := newAPI(t)
	token, _, s1, _ := setupOwner(t, app)
	item := createItem(t, app, token, s1, 1, 0)

	sale := fiber.Map{
		"product_id": item.ID, "size": "40", "quantity": 2, "price": 3500,
		"payments": []fiber.Map{{"method": "cash", "amount": 7000}},
	}
	assert.Equal(t, http.StatusUnprocessableEntity, send(t, app, call{method: http.MethodPost, path: "/api/sales", token: token, body: sale}, nil))

	sale["quantity"] = 1
	assert.Equal(t, http.StatusBadRequest, send(t, app, call{method: http.MethodPost, path: "/api/sales", token: token, body: sale}, nil),
		"pagos que no cuadran con el total")

	assert.Equal(t, http.StatusNotFound, send(t, app, call{method: http.MethodGet, path: "/api/inventory/no-existe", token: token}, nil))
	assert.Equal(t, http.StatusConflict, send(t, app, call{method: http.MethodPost, path: "/api/inventory", token: token, body: fiber.Map{
		"store_id": s1, "at_no": "A12", "name": "Otra", "sizes": "40", "colors": "Red", "price": 1, "stock": 1,
	}}, nil), "@No repetido en la misma duka")
	assert.Equal(t, http.StatusBadRequest, send(t, app, call{method: http.MethodGet, path: "/api/sales?from=ayer", token: token}, nil))
	assert.Equal(t, http.StatusUnauthorized, send(t, app, call{method: http.MethodGet, path: "/api/inventory"}, nil))
}

func TestAPI_NegocioSoloParaSusMiembros(t *testing.T) {
	app := newAPI(t)
	token, ownerID, _, _ := setupOwner(t, app)

	var owner dto.UserResponse
	require.Equal(t, http.StatusOK, send(t, app, call{method: http.MethodGet, path: "/api/users/" + ownerID, token: token}, &owner))

	var other dto.BusinessResponse
	require.Equal(t, http.StatusCreated, send(t, app, call{method: http.MethodPost, path: "/api/businesses",
		body: fiber.Map{"name": "Otra Duka"}}, &other))

	var mine dto.BusinessResponse
	require.Equal(t, http.StatusOK, send(t, app, call{method: http.MethodGet, path: "/api/businesses/" + owner.BusinessID, token: token}, &mine))
	assert.Equal(t, "Duka Shoes", mine.Name)
	assert.True(t, mine.HasOwner)

	assert.Equal(t, http.StatusNotFound, send(t, app, call{method: http.MethodGet, path: "/api/businesses/" + other.ID, token: token}, nil),
		"otro negocio no se revela")
	assert.Equal(t, http.StatusUnauthorized, send(t, app, call{method: http.MethodGet, path: "/api/businesses/" + owner.BusinessID}, nil))
}

func TestAPI_PrestamoYDevolucion(t *testing.T) {
	app := newAPI(t)
	token, ownerID, s1, s2 := setupOwner(t, app)
	item := createItem(t, app, token, s1, 10, 1)

	var lend dto.LendResponse
	require.Equal(t, http.StatusCreated, send(t, app, call{method: http.MethodPost, path: "/api/lends", token: token, body: fiber.Map{
		"item_id": item.ID, "from_store_id": s1, "to_store_id": s2,
		"from_staff_id": ownerID, "to_staff_id": ownerID, "lend_type": "single",
	}}, &lend))

	var src dto.ItemResponse
	require.Equal(t, http.StatusOK, send(t, app, call{method: http.MethodGet, path: "/api/inventory/" + item.ID, token: token}, &src))
	assert.Equal(t, 9, src.Stock)
	assert.Equal(t, 0, src.IncompletePairs)

	var list dto.LendListResponse
	require.Equal(t, http.StatusOK, send(t, app, call{method: http.MethodGet, path: "/api/lends?store_id=" + s2 + "&status=lent", token: token}, &list))
	require.Len(t, list.Items, 1)

	var returned dto.LendResponse
	require.Equal(t, http.StatusOK, send(t, app, call{method: http.MethodPost, path: "/api/lends/" + lend.ID + "/return", token: token}, &returned))
	assert.Equal(t, "returned", returned.Status)
	assert.Equal(t, http.StatusConflict, send(t, app, call{method: http.MethodPost, path: "/api/lends/" + lend.ID + "/mark-updated", token: token}, nil))

	require.Equal(t, http.StatusOK, send(t, app, call{method: http.MethodGet, path: "/api/inventory/" + item.ID, token: token}, &src))
	assert.Equal(t, 10, src.Stock)
	assert.Equal(t, 1, src.IncompletePairs)

	var audit dto.AuditReport
	require.Equal(t, http.StatusOK, send(t, app, call{method: http.MethodGet, path: "/api/inventory/audit", token: token}, &audit))
	assert.Empty(t, audit.Violations)
	assert.Zero(t, audit.OpenLends)
}
