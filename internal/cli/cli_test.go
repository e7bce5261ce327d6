package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"product-catalog/internal/client"
	"product-catalog/internal/domain"
	"product-catalog/internal/repository"
	"product-catalog/internal/service"
	"product-catalog/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type harness struct {
	api  *client.Client
	repo repository.ProductRepository
}

func newHarness(t *testing.T, seed []domain.Product) *harness {
	t.Helper()

	logger := zap.NewNop()
	repo := repository.NewMemoryProductRepository(seed)
	handler := transport.NewProductHandler(service.NewProductService(repo, nil, logger), logger)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &harness{api: client.New(srv.URL + "/api"), repo: repo}
}

func (h *harness) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := NewRootCommand(h.api)
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestListPrintsTable(t *testing.T) {
	h := newHarness(t, repository.DefaultSeedProducts())

	out, _, err := h.run(t, "", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	for _, want := range []string{"Products (2)", "ID", "NAME", "Smartphone", "Laptop", "Rp 15.000.000", "Rp 5.000.000"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Smartphone") > strings.Index(out, "Laptop") {
		t.Errorf("expected newest product first:\n%s", out)
	}
}

func TestListEmptyCatalog(t *testing.T) {
	h := newHarness(t, nil)

	out, _, err := h.run(t, "", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "No products found") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestCreateUpdateDeleteFlow(t *testing.T) {
	h := newHarness(t, repository.DefaultSeedProducts())
	ctx := context.Background()

	out, _, err := h.run(t, "", "create", "--name", "Mouse", "--price", "100000", "--category", "Electronics", "--stock", "5")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !strings.Contains(out, "Product created successfully (id 3)") {
		t.Errorf("unexpected create output %q", out)
	}

	out, _, err = h.run(t, "", "update", "3", "--stock", "3")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !strings.Contains(out, "Product updated successfully") {
		t.Errorf("unexpected update output %q", out)
	}
	mouse, err := h.repo.FindByID(ctx, 3)
	if err != nil || mouse.Stock != 3 || mouse.Name != "Mouse" {
		t.Fatalf("unexpected stored product %+v (%v)", mouse, err)
	}

	out, _, err = h.run(t, "n\n", "delete", "3")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !strings.Contains(out, "Aborted") {
		t.Errorf("expected abort without confirmation, got %q", out)
	}
	if _, err := h.repo.FindByID(ctx, 3); err != nil {
		t.Fatalf("product should survive an aborted delete: %v", err)
	}

	out, _, err = h.run(t, "y\n", "delete", "3")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !strings.Contains(out, "Product deleted successfully") {
		t.Errorf("unexpected delete output %q", out)
	}
	if _, err := h.repo.FindByID(ctx, 3); !errors.Is(err, repository.ErrProductNotFound) {
		t.Errorf("expected product to be gone, got %v", err)
	}
}

func TestDeleteWithYesSkipsPrompt(t *testing.T) {
	h := newHarness(t, repository.DefaultSeedProducts())

	out, _, err := h.run(t, "", "delete", "1", "--yes")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if strings.Contains(out, "[y/N]") {
		t.Errorf("prompt should be skipped, got %q", out)
	}
}

func TestCreateValidatesBeforeCalling(t *testing.T) {
	h := newHarness(t, nil)

	_, stderr, err := h.run(t, "", "create", "--name", "Mouse", "--price", "0")

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(stderr, "category: Category is required") {
		t.Errorf("expected field errors on stderr, got %q", stderr)
	}

	products, _ := h.repo.List(context.Background())
	if len(products) != 0 {
		t.Errorf("nothing should be stored, got %d products", len(products))
	}
}

func TestGetMissingProductReportsServerMessage(t *testing.T) {
	h := newHarness(t, nil)

	_, _, err := h.run(t, "", "get", "42")

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Product not found" {
		t.Errorf("expected Product not found, got %v", err)
	}
}

func TestUpdateRequiresAField(t *testing.T) {
	h := newHarness(t, repository.DefaultSeedProducts())

	if _, _, err := h.run(t, "", "update", "1", "--verbose"); err == nil {
		t.Error("expected error when no field flag is set")
	}
	if _, _, err := h.run(t, "", "update", "abc", "--stock", "1"); err == nil {
		t.Error("expected error for non-numeric id")
	}
}

func TestCategoryCompletion(t *testing.T) {
	matches, directive := completeCategory(&cobra.Command{}, nil, "e")
	if len(matches) != 1 || matches[0] != "Electronics" {
		t.Errorf("unexpected matches %v", matches)
	}
	if directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("unexpected directive %v", directive)
	}

	all, _ := completeCategory(&cobra.Command{}, nil, "")
	if len(all) != len(domain.SuggestedCategories) {
		t.Errorf("expected every suggestion for empty prefix, got %v", all)
	}
}

func TestFormatPrice(t *testing.T) {
	cases := map[float64]string{
		100000:     "Rp 100.000",
		15000000:   "Rp 15.000.000",
		999:        "Rp 999",
		1234.5:     "Rp 1.234,50",
		1000000.25: "Rp 1.000.000,25",
	}
	for price, want := range cases {
		if got := formatPrice(price); got != want {
			t.Errorf("formatPrice(%v) = %q, want %q", price, got, want)
		}
	}
}
