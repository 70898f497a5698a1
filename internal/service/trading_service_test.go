package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"stocksim/internal/models"
	"stocksim/internal/repository"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestExecuteOrder_BuyCreatesPosition(t *testing.T) {
	repo := newStubRepo()
	repo.addUser(1, dec("100000"))
	svc := &TradingService{Repo: repo}

	conf, err := svc.ExecuteOrder(context.Background(), 1, OrderRequest{
		Symbol:         "aapl",
		Side:           "BUY",
		Quantity:       dec("10"),
		ExecutionPrice: dec("150"),
	})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if conf.Symbol != "AAPL" || conf.Side != models.SideBuy {
		t.Fatalf("normalization: symbol=%q side=%q", conf.Symbol, conf.Side)
	}
	if !conf.TotalAmount.Equal(dec("1500")) {
		t.Fatalf("total=%s want=1500", conf.TotalAmount)
	}
	if !conf.RemainingCash.Equal(dec("98500")) {
		t.Fatalf("remaining cash=%s want=98500", conf.RemainingCash)
	}

	user, _ := repo.GetUserByID(context.Background(), 1)
	if !user.CashBalance.Equal(dec("98500")) {
		t.Fatalf("persisted cash=%s want=98500", user.CashBalance)
	}
	pos := repo.position(1, "AAPL")
	if pos == nil {
		t.Fatal("position missing")
	}
	if !pos.Quantity.Equal(dec("10")) || !pos.AverageCost.Equal(dec("150")) {
		t.Fatalf("position qty=%s avg=%s", pos.Quantity, pos.AverageCost)
	}
	if n, _ := repo.CountActivities(context.Background(), repository.ListActivitiesParams{UserID: 1}); n != 1 {
		t.Fatalf("activities=%d want=1", n)
	}
}

func TestExecuteOrder_WeightedAverageCost(t *testing.T) {
	repo := newStubRepo()
	repo.addUser(1, dec("100000"))
	svc := &TradingService{Repo: repo}
	ctx := context.Background()

	buy := func(qty, price string) {
		t.Helper()
		_, err := svc.ExecuteOrder(ctx, 1, OrderRequest{
			Symbol: "AAPL", Side: models.SideBuy,
			Quantity: dec(qty), ExecutionPrice: dec(price),
		})
		if err != nil {
			t.Fatalf("buy %s@%s: %v", qty, price, err)
		}
	}
	buy("10", "100")
	buy("5", "200")

	pos := repo.position(1, "AAPL")
	if !pos.Quantity.Equal(dec("15")) {
		t.Fatalf("qty=%s want=15", pos.Quantity)
	}
	// (10*100 + 5*200) / 15
	if got := pos.AverageCost.StringFixed(2); got != "133.33" {
		t.Fatalf("avg=%s want=133.33", got)
	}
}

func TestExecuteOrder_InsufficientFundsLeavesStateUntouched(t *testing.T) {
	repo := newStubRepo()
	repo.addUser(1, dec("1000"))
	svc := &TradingService{Repo: repo}

	_, err := svc.ExecuteOrder(context.Background(), 1, OrderRequest{
		Symbol: "AAPL", Side: models.SideBuy,
		Quantity: dec("10"), ExecutionPrice: dec("150"),
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err=%v want ErrInsufficientFunds", err)
	}

	user, _ := repo.GetUserByID(context.Background(), 1)
	if !user.CashBalance.Equal(dec("1000")) {
		t.Fatalf("cash=%s want unchanged 1000", user.CashBalance)
	}
	if repo.position(1, "AAPL") != nil {
		t.Fatal("position should not exist")
	}
	if n, _ := repo.CountActivities(context.Background(), repository.ListActivitiesParams{UserID: 1}); n != 0 {
		t.Fatalf("activities=%d want=0", n)
	}
}

func TestExecuteOrder_SellWithoutPosition(t *testing.T) {
	repo := newStubRepo()
	repo.addUser(1, dec("100000"))
	svc := &TradingService{Repo: repo}

	_, err := svc.ExecuteOrder(context.Background(), 1, OrderRequest{
		Symbol: "AAPL", Side: models.SideSell,
		Quantity: dec("1"), ExecutionPrice: dec("150"),
	})
	if !errors.Is(err, ErrNoPosition) {
		t.Fatalf("err=%v want ErrNoPosition", err)
	}
}

func TestExecuteOrder_SellMoreThanHeld(t *testing.T) {
	repo := newStubRepo()
	repo.addUser(1, dec("100000"))
	svc := &TradingService{Repo: repo}
	ctx := context.Background()

	if _, err := svc.ExecuteOrder(ctx, 1, OrderRequest{
		Symbol: "AAPL", Side: models.SideBuy,
		Quantity: dec("5"), ExecutionPrice: dec("100"),
	}); err != nil {
		t.Fatalf("setup buy: %v", err)
	}

	_, err := svc.ExecuteOrder(ctx, 1, OrderRequest{
		Symbol: "AAPL", Side: models.SideSell,
		Quantity: dec("6"), ExecutionPrice: dec("100"),
	})
	if !errors.Is(err, ErrInsufficientShares) {
		t.Fatalf("err=%v want ErrInsufficientShares", err)
	}
	pos := repo.position(1, "AAPL")
	if !pos.Quantity.Equal(dec("5")) {
		t.Fatalf("qty=%s want unchanged 5", pos.Quantity)
	}
}

func TestExecuteOrder_SellToZeroClosesPosition(t *testing.T) {
	repo := newStubRepo()
	repo.addUser(1, dec("100000"))
	svc := &TradingService{Repo: repo}
	ctx := context.Background()

	if _, err := svc.ExecuteOrder(ctx, 1, OrderRequest{
		Symbol: "AAPL", Side: models.SideBuy,
		Quantity: dec("10"), ExecutionPrice: dec("100"),
	}); err != nil {
		t.Fatalf("setup buy: %v", err)
	}

	conf, err := svc.ExecuteOrder(ctx, 1, OrderRequest{
		Symbol: "AAPL", Side: models.SideSell,
		Quantity: dec("10"), ExecutionPrice: dec("125"),
	})
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if repo.position(1, "AAPL") != nil {
		t.Fatal("position row should be gone after selling to zero")
	}
	if !conf.RemainingCash.Equal(dec("100250")) {
		t.Fatalf("cash=%s want=100250", conf.RemainingCash)
	}

	activities, _ := repo.ListActivities(ctx, repository.ListActivitiesParams{UserID: 1})
	last := activities[len(activities)-1]
	if last.PositionID != nil {
		t.Fatalf("closing trade should have nil position id, got %d", *last.PositionID)
	}
}

func TestExecuteOrder_CashSharesConservation(t *testing.T) {
	repo := newStubRepo()
	repo.addUser(1, dec("100000"))
	svc := &TradingService{Repo: repo}
	ctx := context.Background()

	// Round trip at the same price must restore the starting balance exactly.
	for _, step := range []struct {
		side string
		qty  string
	}{
		{models.SideBuy, "7"},
		{models.SideBuy, "3"},
		{models.SideSell, "10"},
	} {
		if _, err := svc.ExecuteOrder(ctx, 1, OrderRequest{
			Symbol: "TSLA", Side: step.side,
			Quantity: dec(step.qty), ExecutionPrice: dec("217.55"),
		}); err != nil {
			t.Fatalf("%s %s: %v", step.side, step.qty, err)
		}
	}

	user, _ := repo.GetUserByID(ctx, 1)
	if !user.CashBalance.Equal(dec("100000")) {
		t.Fatalf("cash=%s want=100000", user.CashBalance)
	}
	if repo.position(1, "TSLA") != nil {
		t.Fatal("no shares should remain")
	}
}

func TestExecuteOrder_Validation(t *testing.T) {
	repo := newStubRepo()
	repo.addUser(1, dec("100000"))
	svc := &TradingService{Repo: repo}
	ctx := context.Background()

	cases := []OrderRequest{
		{Symbol: "", Side: models.SideBuy, Quantity: dec("1"), ExecutionPrice: dec("1")},
		{Symbol: "AAPL", Side: "hold", Quantity: dec("1"), ExecutionPrice: dec("1")},
		{Symbol: "AAPL", Side: models.SideBuy, Quantity: dec("0"), ExecutionPrice: dec("1")},
		{Symbol: "AAPL", Side: models.SideBuy, Quantity: dec("-1"), ExecutionPrice: dec("1")},
		{Symbol: "AAPL", Side: models.SideBuy, Quantity: dec("1"), ExecutionPrice: dec("0")},
	}
	for i, req := range cases {
		if _, err := svc.ExecuteOrder(ctx, 1, req); !errors.Is(err, ErrInvalidOrder) {
			t.Fatalf("case %d: err=%v want ErrInvalidOrder", i, err)
		}
	}
}

func TestExecuteOrder_InactiveUser(t *testing.T) {
	repo := newStubRepo()
	u := repo.addUser(1, dec("100000"))
	u.IsActive = false
	svc := &TradingService{Repo: repo}

	_, err := svc.ExecuteOrder(context.Background(), 1, OrderRequest{
		Symbol: "AAPL", Side: models.SideBuy,
		Quantity: dec("1"), ExecutionPrice: dec("1"),
	})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err=%v want ErrUserNotFound", err)
	}
}
