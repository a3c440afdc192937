package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"stockify/internal/config"
)

func TestSMTPSenderRendersCode(t *testing.T) {
	sender := NewSMTPSender(config.SMTPConfig{
		Host: "smtp.example.com",
		Port: 587,
		From: "no-reply@stockify.test",
	})

	var gotAddr string
	var gotTo []string
	var gotMsg string
	sender.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	if err := sender.SendOTP(context.Background(), "rahim@example.com", "rahim", "042137", 10*time.Minute); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	if gotAddr != "smtp.example.com:587" {
		t.Fatalf("addr = %q", gotAddr)
	}
	if len(gotTo) != 1 || gotTo[0] != "rahim@example.com" {
		t.Fatalf("to = %v", gotTo)
	}
	for _, want := range []string{"042137", "10 minutes", "Hello rahim", "Content-Type: text/html"} {
		if !strings.Contains(gotMsg, want) {
			t.Fatalf("message missing %q", want)
		}
	}
}

func TestSMTPSenderEscapesName(t *testing.T) {
	body, err := renderOTP("<b>x</b>", "111111", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(body, "<b>x</b>") {
		t.Fatal("name was not escaped")
	}
}

func TestSMTPSenderHonoursCancelledContext(t *testing.T) {
	sender := NewSMTPSender(config.SMTPConfig{Host: "localhost", Port: 25})
	sender.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send called after cancel")
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sender.SendOTP(ctx, "a@b.c", "a", "1", time.Minute); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}
