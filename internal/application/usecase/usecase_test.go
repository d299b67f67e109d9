package usecase

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ladespensa/despensa-api/internal/application/dto"
	appinv "github.com/ladespensa/despensa-api/internal/application/inventory"
	"github.com/ladespensa/despensa-api/internal/application/ports"
	"github.com/ladespensa/despensa-api/internal/domain"
	"github.com/ladespensa/despensa-api/internal/domain/entity"
	"github.com/ladespensa/despensa-api/internal/domain/listing"
	"github.com/ladespensa/despensa-api/internal/domain/repository"
	"github.com/ladespensa/despensa-api/internal/infrastructure/memory"
)

var (
	testNow  = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	empleado = dto.Actor{ID: "u-1", Name: "Rosa", Role: entity.RoleEmpleado}
	jefe     = dto.Actor{ID: "u-2", Name: "Marta", Role: entity.RoleJefe}
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fixedNow() time.Time { return testNow }

// fakeStorage guarda en memoria lo que recibe.
type fakeStorage struct {
	saved   map[string][]byte
	deleted []string
}

func (f *fakeStorage) Save(_ context.Context, name string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	f.saved[name] = b
	return "/uploads/" + name, nil
}

func (f *fakeStorage) Delete(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

type fixture struct {
	store     *memory.Store
	storage   *fakeStorage
	products  *ProductUseCase
	suppliers *SupplierUseCase
	payables  *PayableUseCase
	sales     *appinv.SaleUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	fs := &fakeStorage{}
	products := NewProductUseCase(st.TxRunner(), st.Products(), st.PriceChanges(), st.Movements(), fs, nil, 30, 1<<10)
	products.now = fixedNow
	suppliers := NewSupplierUseCase(st.Suppliers(), st.Products(), nil)
	suppliers.now = fixedNow
	payables := NewPayableUseCase(st.Payables(), nil)
	payables.now = fixedNow
	sales := appinv.NewSaleUseCase(st.TxRunner(), st.Tickets(), nil)
	return &fixture{store: st, storage: fs, products: products, suppliers: suppliers, payables: payables, sales: sales}
}

func (f *fixture) createProduct(t *testing.T, name, barcode string, qty int) *dto.ProductResponse {
	t.Helper()
	p, err := f.products.Create(context.Background(), jefe, dto.CreateProductRequest{
		Name:          name,
		Category:      "Abarrotes",
		Barcode:       barcode,
		PurchasePrice: dec("1000"),
		SalePrice:     dec("1300"),
		Quantity:      qty,
	})
	require.NoError(t, err)
	return p
}

func TestProductCreate_ConCantidadCreaLote(t *testing.T) {
	f := newFixture(t)
	p := f.createProduct(t, "Arroz Tucapel", "7801", 12)

	assert.Equal(t, 12, p.Stock)
	assert.True(t, p.MarginPercent.Equal(dec("30")))

	lots, err := f.store.Lots().ListByProduct(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, 12, lots[0].Quantity)

	moves, err := f.products.StockHistory(context.Background(), p.ID, 0)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, entity.MovementEntry, moves[0].Type)
}

func TestProductCreate_CodigoDuplicado(t *testing.T) {
	f := newFixture(t)
	f.createProduct(t, "Arroz", "7801", 0)

	_, err := f.products.Create(context.Background(), jefe, dto.CreateProductRequest{
		Name: "Otro", Category: "Abarrotes", Barcode: " 7801 ", SalePrice: dec("10"),
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestProductUpdate_PrecioRequierePermiso(t *testing.T) {
	f := newFixture(t)
	p := f.createProduct(t, "Arroz", "7801", 0)
	price := dec("1500")

	_, err := f.products.Update(context.Background(), empleado, p.ID, dto.UpdateProductRequest{SalePrice: &price})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	name := "Arroz grado 1"
	out, err := f.products.Update(context.Background(), empleado, p.ID, dto.UpdateProductRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Arroz grado 1", out.Name)

	out, err = f.products.Update(context.Background(), jefe, p.ID, dto.UpdateProductRequest{SalePrice: &price})
	require.NoError(t, err)
	assert.True(t, out.SalePrice.Equal(price))

	history, err := f.products.PriceHistory(context.Background(), p.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].SalePriceBefore.Equal(dec("1300")))
	assert.True(t, history[0].SalePriceAfter.Equal(price))
	assert.Equal(t, jefe.ID, history[0].UserID)
}

func TestProductDeactivate_SaleDelListado(t *testing.T) {
	f := newFixture(t)
	a := f.createProduct(t, "Arroz", "7801", 0)
	f.createProduct(t, "Azúcar", "7802", 0)

	out, err := f.products.Deactivate(context.Background(), jefe, a.ID, dto.DeactivateProductRequest{Reason: "vencido", Comment: "lote dañado"})
	require.NoError(t, err)
	assert.False(t, out.Active)
	require.NotNil(t, out.Deactivation)
	assert.Equal(t, "vencido", out.Deactivation.Reason)
	assert.Equal(t, "Marta", out.Deactivation.UserName)

	_, err = f.products.Deactivate(context.Background(), jefe, a.ID, dto.DeactivateProductRequest{Reason: "otro"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	list, err := f.products.List(context.Background(), dto.ProductListQuery{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Azúcar", list.Items[0].Name)

	all, err := f.products.List(context.Background(), dto.ProductListQuery{ListQuery: dto.ListQuery{Estado: "todos"}})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	_, err = f.products.Activate(context.Background(), a.ID)
	require.NoError(t, err)
	list, err = f.products.List(context.Background(), dto.ProductListQuery{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
}

// sellAfterRead vende justo después de que el caso de uso lee el producto sin bloqueo,
// como lo haría una caja concurrente.
type sellAfterRead struct {
	repository.ProductRepository
	sell func()
}

func (r *sellAfterRead) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := r.ProductRepository.GetByID(ctx, id)
	if r.sell != nil {
		sell := r.sell
		r.sell = nil
		sell()
	}
	return p, err
}

func TestProductMutations_NoPisanVentaConcurrente(t *testing.T) {
	cases := map[string]func(uc *ProductUseCase, id string) error{
		"desactivar": func(uc *ProductUseCase, id string) error {
			_, err := uc.Deactivate(context.Background(), jefe, id, dto.DeactivateProductRequest{Reason: "quiebre"})
			return err
		},
		"activar": func(uc *ProductUseCase, id string) error {
			_, err := uc.Activate(context.Background(), id)
			return err
		},
		"imagen": func(uc *ProductUseCase, id string) error {
			_, err := uc.UploadImage(context.Background(), id, ImageUpload{
				Filename: "foto.png", Size: int64(len(pngHeader)), Content: bytes.NewReader(pngHeader),
			})
			return err
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			p := f.createProduct(t, "Arroz", "7801", 10)

			repo := &sellAfterRead{ProductRepository: f.store.Products(), sell: func() {
				_, err := f.sales.Create(context.Background(), empleado, dto.CreateSaleRequest{
					Items:         []dto.SaleItemRequest{{ProductID: p.ID, Quantity: 4}},
					PaymentMethod: entity.PaymentCash,
				})
				require.NoError(t, err)
			}}
			uc := NewProductUseCase(f.store.TxRunner(), repo, f.store.PriceChanges(), f.store.Movements(), f.storage, nil, 30, 1<<10)
			uc.now = fixedNow
			require.NoError(t, mutate(uc, p.ID))

			got, err := f.store.Products().GetByID(context.Background(), p.ID)
			require.NoError(t, err)
			lots, err := f.store.Lots().ListByProduct(context.Background(), p.ID)
			require.NoError(t, err)
			sum := 0
			for _, l := range lots {
				sum += l.Quantity
			}
			assert.Equal(t, sum, got.Stock)
			if repo.sell == nil {
				assert.Equal(t, 6, got.Stock)
			}
		})
	}
}

func TestProductList_BusquedaSinAcentosYVacio(t *testing.T) {
	f := newFixture(t)
	f.createProduct(t, "Azúcar Iansa", "7802", 3)
	f.createProduct(t, "Arroz", "7801", 0)

	list, err := f.products.List(context.Background(), dto.ProductListQuery{ListQuery: dto.ListQuery{Q: "azucar"}})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Azúcar Iansa", list.Items[0].Name)

	list, err = f.products.List(context.Background(), dto.ProductListQuery{Disponibilidad: "sin_stock"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Arroz", list.Items[0].Name)

	list, err = f.products.List(context.Background(), dto.ProductListQuery{ListQuery: dto.ListQuery{Q: "fideos"}})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assert.Equal(t, dto.NoResultsMessage, list.Meta.Message)
}

func TestProductDelete_BorraLotes(t *testing.T) {
	f := newFixture(t)
	p := f.createProduct(t, "Arroz", "7801", 5)

	require.NoError(t, f.products.Delete(context.Background(), p.ID))
	_, err := f.products.GetByID(context.Background(), p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	lots, err := f.store.Lots().ListByProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Empty(t, lots)
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUploadImage(t *testing.T) {
	f := newFixture(t)
	p := f.createProduct(t, "Arroz", "7801", 0)

	out, err := f.products.UploadImage(context.Background(), p.ID, ImageUpload{
		Filename: "foto.png", Size: int64(len(pngHeader)), Content: bytes.NewReader(pngHeader),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out.URL, ".png"))
	assert.Len(t, f.storage.saved, 1)

	got, err := f.products.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, out.URL, got.ImageURL)
}

func TestUploadImage_Rechazos(t *testing.T) {
	f := newFixture(t)
	p := f.createProduct(t, "Arroz", "7801", 0)

	text := []byte("esto no es una imagen")
	_, err := f.products.UploadImage(context.Background(), p.ID, ImageUpload{
		Filename: "foto.png", Size: int64(len(text)), Content: bytes.NewReader(text),
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedMedia)

	_, err = f.products.UploadImage(context.Background(), p.ID, ImageUpload{
		Filename: "grande.png", Size: 2 << 10, Content: bytes.NewReader(pngHeader),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.storage.saved)
}

func TestSupplier_ProductosDebenExistir(t *testing.T) {
	f := newFixture(t)
	p := f.createProduct(t, "Arroz", "7801", 0)

	_, err := f.suppliers.Create(context.Background(), dto.CreateSupplierRequest{Name: "Distribuidora Sur", ProductIDs: []string{"no-existe"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	s, err := f.suppliers.Create(context.Background(), dto.CreateSupplierRequest{
		Name:       "Distribuidora Sur",
		Categories: []string{"Abarrotes", " Abarrotes ", ""},
		ProductIDs: []string{p.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Abarrotes"}, s.Categories)
	assert.True(t, s.Active)

	off, err := f.suppliers.SetActive(context.Background(), s.ID, false)
	require.NoError(t, err)
	assert.False(t, off.Active)

	list, err := f.suppliers.List(context.Background(), listing.Query{Category: "abarrotes"})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	require.NoError(t, f.suppliers.Delete(context.Background(), s.ID))
	_, err = f.suppliers.GetByID(context.Background(), s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPayable_UnicaPorProveedorCategoriaMes(t *testing.T) {
	f := newFixture(t)
	in := dto.CreatePayableRequest{Provider: "CGE", Category: "Luz", Month: "2026-05", Amount: dec("45000")}

	first, err := f.payables.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, entity.PayablePending, first.Status)

	_, err = f.payables.Create(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	require.NoError(t, f.payables.Delete(context.Background(), first.ID))
	_, err = f.payables.Create(context.Background(), in)
	assert.NoError(t, err)
}

func TestPayable_MarcarPagada(t *testing.T) {
	f := newFixture(t)
	p, err := f.payables.Create(context.Background(), dto.CreatePayableRequest{Provider: "Aguas Andinas", Category: "Agua", Month: "2026-04", Amount: dec("18000")})
	require.NoError(t, err)

	paid, err := f.payables.MarkPaid(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PayablePaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.True(t, paid.PaidAt.Equal(testNow))

	_, err = f.payables.MarkPaid(context.Background(), p.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	pending, err := f.payables.List(context.Background(), listing.Query{Status: entity.PayablePending})
	require.NoError(t, err)
	assert.Empty(t, pending.Items)
}

func TestPayable_MesInvalido(t *testing.T) {
	f := newFixture(t)
	_, err := f.payables.Create(context.Background(), dto.CreatePayableRequest{Provider: "CGE", Category: "Luz", Month: "2026-13", Amount: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// fakeRenderer devuelve un contenido fijo o entra en pánico.
type fakeRenderer struct {
	panics bool
	got    ports.ReportData
	kind   string
}

func (r *fakeRenderer) Render(kind string, data ports.ReportData) ([]byte, error) {
	if r.panics {
		panic("fuente no encontrada")
	}
	r.kind = kind
	r.got = data
	return []byte("documento"), nil
}

func TestReportGenerate(t *testing.T) {
	f := newFixture(t)
	f.createProduct(t, "Arroz", "7801", 4)
	pdf, xlsx := &fakeRenderer{}, &fakeRenderer{}
	reports := NewReportUseCase(f.products, f.sales, f.suppliers, f.payables, nil, pdf, xlsx)
	reports.now = fixedNow

	file, err := reports.Generate(context.Background(), ReportRequest{Kind: ports.ReportProducts, Actor: jefe})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "reporte-productos-20260504-1000.pdf", file.Filename)
	assert.Equal(t, []byte("documento"), file.Content)
	require.Len(t, pdf.got.Products, 1)
	assert.True(t, pdf.got.Total.Equal(dec("4000")))
	assert.Equal(t, "Marta", pdf.got.GeneratedBy)

	file, err = reports.Generate(context.Background(), ReportRequest{Kind: ports.ReportPayables, Format: dto.FormatXLSX})
	require.NoError(t, err)
	assert.Equal(t, ports.ReportPayables, xlsx.kind)
	assert.True(t, strings.HasSuffix(file.Filename, ".xlsx"))
}

func TestReportGenerate_Errores(t *testing.T) {
	f := newFixture(t)
	reports := NewReportUseCase(f.products, f.sales, f.suppliers, f.payables, nil, &fakeRenderer{panics: true}, &fakeRenderer{})

	_, err := reports.Generate(context.Background(), ReportRequest{Kind: "inventado"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = reports.Generate(context.Background(), ReportRequest{Kind: ports.ReportProducts, Format: "doc"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = reports.Generate(context.Background(), ReportRequest{Kind: ports.ReportProducts})
	assert.ErrorIs(t, err, domain.ErrReportFailed)
}

// fakeLLM registra lo que recibe.
type fakeLLM struct {
	query, snapshot string
	deadline        bool
}

func (l *fakeLLM) Answer(ctx context.Context, query, snapshot string) (string, error) {
	l.query, l.snapshot = query, snapshot
	_, l.deadline = ctx.Deadline()
	return "Quedan 4 unidades de Arroz.", nil
}

func (l *fakeLLM) Model() string { return "modelo-prueba" }

func TestAssistantQuery(t *testing.T) {
	f := newFixture(t)
	f.createProduct(t, "Arroz", "7801", 4)
	llm := &fakeLLM{}
	assistant := NewAssistantUseCase(llm, f.products)
	assistant.now = fixedNow

	out, err := assistant.Query(context.Background(), dto.AssistantQueryRequest{Query: " ¿cuánto arroz queda? "})
	require.NoError(t, err)
	assert.Equal(t, "Quedan 4 unidades de Arroz.", out.Answer)
	assert.Equal(t, "modelo-prueba", out.Model)
	assert.Equal(t, "¿cuánto arroz queda?", llm.query)
	assert.Contains(t, llm.snapshot, "Arroz")
	assert.Contains(t, llm.snapshot, "stock 4")
	assert.True(t, llm.deadline)
}

func TestAssistantQuery_SinLLM(t *testing.T) {
	f := newFixture(t)
	assistant := NewAssistantUseCase(nil, f.products)

	_, err := assistant.Query(context.Background(), dto.AssistantQueryRequest{Query: "hola"})
	assert.ErrorIs(t, err, domain.ErrAssistantDisabled)

	_, err = assistant.Query(context.Background(), dto.AssistantQueryRequest{Query: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
