/*
 * Copyright 2026 SREDiag Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cluster

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/srediag/plugin-hostapi/internal/hostabi"
	"github.com/srediag/plugin-hostapi/internal/hostabi/hostabitest"
	"github.com/srediag/plugin-hostapi/pkg/hostmod"
)

type ClusterTestSuite struct {
	suite.Suite
	fake *hostabitest.FakeHost
}

func (s *ClusterTestSuite) SetupTest() {
	receivers.Clear()
	s.fake = hostabitest.New()
	s.fake.Install()
}

func (s *ClusterTestSuite) TearDownTest() {
	hostabi.Unbind()
	receivers.Clear()
}

func (s *ClusterTestSuite) TestRegisterReceiver() {
	err := RegisterReceiver(hostmod.NewContext(nil), 42, nil)
	s.Require().ErrorIs(err, ErrNilHandler)

	handler := func(*hostmod.Context, string, uint8, []byte) {}
	err = RegisterReceiver(hostmod.NewContext(nil), 42, handler)
	s.Require().Nil(err)
	s.Require().Equal(1, s.fake.Receivers[42])
}

func (s *ClusterTestSuite) TestRegisterReceiverUnbound() {
	hostabi.Unbind()
	handler := func(*hostmod.Context, string, uint8, []byte) {}
	err := RegisterReceiver(hostmod.NewContext(nil), 42, handler)
	s.Require().ErrorIs(err, hostabi.ErrUnbound)
}

func (s *ClusterTestSuite) TestReRegisterReplacesHandler() {
	ctx := hostmod.NewContext(nil)
	var hits []string
	s.Require().Nil(RegisterReceiver(ctx, 7, func(*hostmod.Context, string, uint8, []byte) {
		hits = append(hits, "old")
	}))
	s.Require().Nil(RegisterReceiver(ctx, 7, func(*hostmod.Context, string, uint8, []byte) {
		hits = append(hits, "new")
	}))

	hostabi.DispatchClusterMessage(nil, "node-a", 7, nil)
	s.Require().Equal([]string{"new"}, hits)
}

func (s *ClusterTestSuite) TestSendValidation() {
	ctx := hostmod.NewContext(nil)

	err := Send(ctx, "", 1, []byte("x"))
	s.Require().ErrorIs(err, ErrInvalidTarget)

	err = Send(ctx, "node\x00id", 1, []byte("x"))
	s.Require().ErrorIs(err, ErrInvalidTarget)

	s.Require().Empty(s.fake.Sent)
}

func (s *ClusterTestSuite) TestSend() {
	err := Send(hostmod.NewContext(nil), "node-b", 42, []byte("payload"))
	s.Require().Nil(err)
	s.Require().Len(s.fake.Sent, 1)
	s.Require().Equal("node-b", s.fake.Sent[0].Target)
	s.Require().Equal(uint8(42), s.fake.Sent[0].MsgType)
	s.Require().Equal([]byte("payload"), s.fake.Sent[0].Payload)
}

func (s *ClusterTestSuite) TestSendHostFailure() {
	s.fake.FailSend = true
	err := Send(hostmod.NewContext(nil), "node-b", 42, []byte("payload"))
	s.Require().ErrorIs(err, ErrSendFailed)
}

func (s *ClusterTestSuite) TestSendUnbound() {
	hostabi.Unbind()
	err := Send(hostmod.NewContext(nil), "node-b", 42, nil)
	s.Require().ErrorIs(err, hostabi.ErrUnbound)
}

func (s *ClusterTestSuite) TestBroadcast() {
	err := Broadcast(hostmod.NewContext(nil), 9, []byte("to everyone"))
	s.Require().Nil(err)
	s.Require().Len(s.fake.Sent, 1)
	s.Require().Equal("", s.fake.Sent[0].Target)
}

func (s *ClusterTestSuite) TestInboundDispatch() {
	var gotSender string
	var gotType uint8
	var gotPayload []byte
	s.Require().Nil(RegisterReceiver(hostmod.NewContext(nil), 42,
		func(_ *hostmod.Context, sender string, msgType uint8, payload []byte) {
			gotSender = sender
			gotType = msgType
			gotPayload = payload
		}))

	hostabi.DispatchClusterMessage(nil, "node-c", 42, []byte("inbound"))
	s.Require().Equal("node-c", gotSender)
	s.Require().Equal(uint8(42), gotType)
	s.Require().Equal([]byte("inbound"), gotPayload)
}

func (s *ClusterTestSuite) TestInboundEmptySenderAndPayload() {
	var gotSender string
	payload := []byte("sentinel")
	s.Require().Nil(RegisterReceiver(hostmod.NewContext(nil), 42,
		func(_ *hostmod.Context, sender string, _ uint8, p []byte) {
			gotSender = sender
			payload = p
		}))

	hostabi.DispatchClusterMessage(nil, "", 42, nil)
	s.Require().Equal("", gotSender)
	s.Require().Empty(payload)
}

func (s *ClusterTestSuite) TestInboundUnknownTypeDropped() {
	before := DispatchStats().Dropped
	hostabi.DispatchClusterMessage(nil, "node-a", 201, []byte("nobody home"))
	s.Require().Equal(before+1, DispatchStats().Dropped)
}

func TestClusterTestSuite(t *testing.T) {
	suite.Run(t, new(ClusterTestSuite))
}
