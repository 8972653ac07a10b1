package errors

import (
	"context"
	stderrs "errors"
	"net"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestTransientNilAndCancellation(t *testing.T) {
	if Transient(nil) {
		t.Fatalf("nil must not be transient")
	}
	if Transient(context.Canceled) {
		t.Fatalf("canceled must not be transient")
	}
	if Transient(context.DeadlineExceeded) {
		t.Fatalf("deadline must not be transient")
	}
	if Transient(Wrap(context.Canceled, KindStorage, "query")) {
		t.Fatalf("wrapped cancellation must not be transient")
	}
}

func TestTransientPostgresErrors(t *testing.T) {
	conn := &pgconn.PgError{Code: "57P03", Message: "the database system is starting up"}
	if !Transient(conn) {
		t.Fatalf("57P03 must be transient")
	}
	// schema drift keeps retrying and surfacing instead of killing the loop
	undef := &pgconn.PgError{Code: "42703", Message: "column does not exist"}
	if !Transient(undef) {
		t.Fatalf("server errors classify transient")
	}
	if !Transient(Wrap(undef, KindStorage, "extract batch")) {
		t.Fatalf("wrapped pg error must stay transient")
	}
}

func TestTransientNetworkErrors(t *testing.T) {
	var nerr net.Error = &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
	if !Transient(nerr) {
		t.Fatalf("net.OpError must be transient")
	}
	if !Transient(syscall.ECONNRESET) {
		t.Fatalf("ECONNRESET must be transient")
	}
	if !Transient(stderrs.New("write tcp 127.0.0.1:9200: broken pipe")) {
		t.Fatalf("text fallback must match broken pipe")
	}
}

func TestTransientRejectsPlainErrors(t *testing.T) {
	if Transient(stderrs.New("title may not be empty")) {
		t.Fatalf("domain errors are not transient")
	}
	if Transient(New(KindInvalid, "bad document")) {
		t.Fatalf("invalid input is not transient")
	}
}
