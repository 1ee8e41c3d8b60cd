package master

import (
	"github.com/getgreenlight/remote-pty/internal/proto"
	"github.com/getgreenlight/remote-pty/internal/rchannel"
)

// Client is one registered slave connection, per the "Client" record in
// remote-pty-master's server state (§4.7).
type Client struct {
	ID   uint32
	Pgrp uint32

	ch *rchannel.Channel
}

func newClient(id uint32, ch *rchannel.Channel) *Client {
	return &Client{ID: id, ch: ch}
}

// writeStdin forwards a chunk of locally-read stdin to this client's slave
// over the STDIN conversation (master is always the requester here).
func (c *Client) writeStdin(data []byte) error {
	req := proto.PtyMasterCall{Type: proto.CallWriteStdin, Data: data}
	return c.sendMasterCall(req)
}

// sendSignal forwards a job-control signal to this client's slave over the
// SIGNAL conversation.
func (c *Client) sendSignal(sig proto.Signal, pgrp uint32) error {
	req := proto.PtyMasterCall{Type: proto.CallSignal, Signal: sig, Pgrp: pgrp}
	return c.sendMasterCall(req)
}

func (c *Client) sendMasterCall(req proto.PtyMasterCall) error {
	data, err := proto.Marshal(req)
	if err != nil {
		return err
	}
	conv := proto.ConvSTDIN
	if req.Type == proto.CallSignal {
		conv = proto.ConvSIGNAL
	}
	respData, err := c.ch.SendRequest(conv, data)
	if err != nil {
		return err
	}
	var resp proto.PtyMasterResponse
	if err := proto.Unmarshal(respData, &resp); err != nil {
		return err
	}
	if resp.Type == proto.RespMasterError {
		return clientRejectedErr{msg: resp.ErrMsg}
	}
	return nil
}

type clientRejectedErr struct{ msg string }

func (e clientRejectedErr) Error() string { return "master: client rejected call: " + e.msg }
