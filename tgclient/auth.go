package tgclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
)

// terminalAuth 首次登录时从终端读取手机号、验证码和二步验证密码
type terminalAuth struct {
	phone string
	in    *bufio.Reader
	out   io.Writer
}

func newTerminalAuth(phone string, in io.Reader, out io.Writer) *terminalAuth {
	return &terminalAuth{phone: phone, in: bufio.NewReader(in), out: out}
}

func (a *terminalAuth) Phone(ctx context.Context) (string, error) {
	if a.phone != "" {
		return a.phone, nil
	}
	return a.prompt(ctx, "Please enter your phone: ")
}

func (a *terminalAuth) Password(ctx context.Context) (string, error) {
	return a.prompt(ctx, "Please enter your password: ")
}

func (a *terminalAuth) Code(ctx context.Context, _ *tg.AuthSentCode) (string, error) {
	return a.prompt(ctx, "Please enter the code you received: ")
}

func (a *terminalAuth) AcceptTermsOfService(_ context.Context, tos tg.HelpTermsOfService) error {
	return &auth.SignUpRequired{TermsOfService: tos}
}

func (a *terminalAuth) SignUp(context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, errors.New("sign up is not supported, register the account in an official app")
}

func (a *terminalAuth) prompt(ctx context.Context, text string) (string, error) {
	fmt.Fprint(a.out, text)

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := a.in.ReadString('\n')
		if err == io.EOF && line != "" {
			err = nil
		}
		ch <- result{strings.TrimSpace(line), err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return "", fmt.Errorf("read input: %w", r.err)
		}
		if r.line == "" {
			return "", errors.New("empty input")
		}
		return r.line, nil
	}
}

var _ auth.UserAuthenticator = (*terminalAuth)(nil)
