package pg

import (
	"context"
	"errors"
	"testing"

	"github.com/SamMeown/ETL/internal/platform/testkit"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestOpenRejectsBadDSN(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), Config{DSN: "://nope"}, nil); err == nil {
		t.Fatal("want a parse error for a malformed DSN")
	}
}

func TestOpenSurfacesPoolFailure(t *testing.T) {
	// swaps the package seam, so no parallel siblings
	testkit.Serial(t)
	testkit.Swap(t, &newPool, func(ctx context.Context, _ *pgxpool.Config) (*pgxpool.Pool, error) {
		return nil, errors.New("pool down")
	})

	_, err := Open(context.Background(), Config{DSN: "postgres://etl:etl@db:5432/movies"}, nil)
	if err == nil || err.Error() != "pool down" {
		t.Fatalf("err = %v, want the pool construction error", err)
	}
}

func TestOpenAppliesConfig(t *testing.T) {
	testkit.Serial(t)

	pool := &pgxpool.Pool{} // never dialed, never closed
	var sawMax int32
	var sawApp string
	testkit.Swap(t, &newPool, func(ctx context.Context, pc *pgxpool.Config) (*pgxpool.Pool, error) {
		sawMax = pc.MaxConns
		sawApp = pc.ConnConfig.RuntimeParams["application_name"]
		return pool, nil
	})

	tr := Tracer(testLogger())
	c, err := Open(context.Background(), Config{
		DSN:      "postgres://etl:etl@db:5432/movies",
		AppName:  "moviesync-test",
		MaxConns: 3,
		SlowMS:   200,
	}, tr)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if sawMax != 3 {
		t.Fatalf("pool MaxConns = %d, want 3", sawMax)
	}
	if sawApp != "moviesync-test" {
		t.Fatalf("application_name = %q, want moviesync-test", sawApp)
	}
	if c.Pool != pool {
		t.Fatal("client does not hold the constructed pool")
	}
	if c.SlowMS != 200 {
		t.Fatalf("SlowMS = %d, want 200", c.SlowMS)
	}
	if c.Tracer == nil {
		t.Fatal("tracer was dropped on the way in")
	}
}

func TestOpenLeavesMaxConnsWhenUnset(t *testing.T) {
	testkit.Serial(t)

	var sawMax int32
	testkit.Swap(t, &newPool, func(ctx context.Context, pc *pgxpool.Config) (*pgxpool.Pool, error) {
		sawMax = pc.MaxConns
		return &pgxpool.Pool{}, nil
	})

	if _, err := Open(context.Background(), Config{DSN: "postgres://etl:etl@db:5432/movies"}, nil); err != nil {
		t.Fatalf("Open: %v", err)
	}
	// pgx picks its own default; zero config must not stomp it to 0
	if sawMax <= 0 {
		t.Fatalf("pool MaxConns = %d, want pgx default > 0", sawMax)
	}
}

func TestCloseToleratesNil(t *testing.T) {
	t.Parallel()

	var c *Client
	c.Close()

	c = &Client{}
	c.Close()
	c.Close()
}
