package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"
)

type tcpClient struct{}

func newTcpClient() Client { return &tcpClient{} }

func (c *tcpClient) TryCapture(ctx context.Context, outputToStdout bool) (bool, string, error) {
	line := "CAPTURE\n"
	if outputToStdout {
		line = "CAPTURE STDOUT\n"
	}
	return c.delegate(ctx, line, "")
}

func (c *tcpClient) TryTranslate(ctx context.Context, text, from, to string) (bool, string, error) {
	line := fmt.Sprintf("TRANSLATE %s %s\n", from, to)
	return c.delegate(ctx, line, text)
}

// delegate scans the configured range for a resident using PING, then
// sends the request line plus optional body and waits for the response.
func (c *tcpClient) delegate(ctx context.Context, requestLine, body string) (bool, string, error) {
	deadline := 2 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			deadline = d
		}
	}
	start, end := getPortRange()
	for port := start; port <= end; port++ {
		addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
		if !ping(addr, deadline) {
			continue
		}
		conn, err := net.DialTimeout("tcp", addr, deadline)
		if err != nil {
			continue
		}
		w := bufio.NewWriter(conn)
		if _, err := w.WriteString(requestLine); err != nil {
			conn.Close()
			return true, "", err
		}
		if body != "" {
			if _, err := w.WriteString(body); err != nil {
				conn.Close()
				return true, "", err
			}
		}
		if err := w.Flush(); err != nil {
			conn.Close()
			return true, "", err
		}
		// Half-close the write side so the server sees EOF on the body.
		if tc, ok := conn.(*net.TCPConn); ok {
			_ = tc.CloseWrite()
		}
		br := bufio.NewReader(conn)
		status, err := br.ReadString('\n')
		if err != nil {
			conn.Close()
			return true, "", err
		}
		if status == "SUCCESS\n" {
			b, _ := io.ReadAll(br)
			conn.Close()
			return true, string(b), nil
		}
		if status == "ERROR\n" {
			msg, _ := io.ReadAll(br)
			conn.Close()
			return true, "", errors.New(string(msg))
		}
		conn.Close()
	}
	return false, "", nil
}
