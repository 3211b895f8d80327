package events

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/abi"
	cerrors "github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/errors"
)

var (
	contractAddr = common.HexToAddress("0xd9145CCE52D386f254917e481eB44e9943F39138")
	aliceAddr    = common.HexToAddress("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4")
	bobAddr      = common.HexToAddress("0xAb8483F64d9C6d1EcF9b849Ae677dD3315835cb2")

	ownershipTransferred = abi.EventSignature{
		Name: "OwnershipTransferred",
		Inputs: []abi.EventParam{
			{Param: abi.Param{Name: "previousOwner", Type: abi.Address}, Indexed: true},
			{Param: abi.Param{Name: "newOwner", Type: abi.Address}, Indexed: true},
		},
	}

	ticketRegistered = abi.EventSignature{
		Name: "TicketRegistered",
		Inputs: []abi.EventParam{
			{Param: abi.Param{Name: "eventName", Type: abi.String}, Indexed: true},
			{Param: abi.Param{Name: "ticketId", Type: abi.Uint256}, Indexed: true},
			{Param: abi.Param{Name: "holder", Type: abi.Address}},
			{Param: abi.Param{Name: "note", Type: abi.String}},
		},
	}
)

func addressTopic(a common.Address) common.Hash {
	return common.BytesToHash(a.Bytes())
}

func ownershipLog(prev, next common.Address, block uint64, index uint) types.Log {
	return types.Log{
		Address:     contractAddr,
		Topics:      []common.Hash{ownershipTransferred.Topic0(), addressTopic(prev), addressTopic(next)},
		BlockNumber: block,
		Index:       index,
	}
}

func TestBuildFilter(t *testing.T) {
	to := uint64(200)
	topic0 := ownershipTransferred.Topic0()

	tests := []struct {
		name       string
		r          BlockRange
		indexed    [][]common.Hash
		wantTopics [][]common.Hash
		wantTo     *big.Int
	}{
		{
			name:       "topic0 only, open range",
			r:          BlockRange{From: 100},
			wantTopics: [][]common.Hash{{topic0}},
		},
		{
			name:       "bounded range with indexed filter",
			r:          BlockRange{From: 100, To: &to},
			indexed:    [][]common.Hash{{addressTopic(aliceAddr)}},
			wantTopics: [][]common.Hash{{topic0}, {addressTopic(aliceAddr)}},
			wantTo:     big.NewInt(200),
		},
		{
			name:       "trailing wildcards are trimmed",
			r:          BlockRange{From: 100},
			indexed:    [][]common.Hash{nil, {addressTopic(bobAddr)}, nil},
			wantTopics: [][]common.Hash{{topic0}, nil, {addressTopic(bobAddr)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := BuildFilter(topic0, contractAddr, tt.r, tt.indexed...)
			assert.Equal(t, []common.Address{contractAddr}, q.Addresses)
			assert.Equal(t, tt.wantTopics, q.Topics)
			assert.Equal(t, big.NewInt(100), q.FromBlock)
			assert.Equal(t, tt.wantTo, q.ToBlock)
		})
	}
}

func TestDecode_IndexedStatic(t *testing.T) {
	ev, err := Decode(ownershipTransferred, ownershipLog(aliceAddr, bobAddr, 7, 0))
	require.NoError(t, err)

	assert.Equal(t, "OwnershipTransferred", ev.Name)
	assert.Equal(t, contractAddr, ev.Address)
	assert.Equal(t, aliceAddr, ev.Values["previousOwner"])
	assert.Equal(t, bobAddr, ev.Values["newOwner"])
	assert.Equal(t, []any{aliceAddr, bobAddr}, ev.Ordered)
	assert.Equal(t, uint64(7), ev.Log.BlockNumber)
}

func TestDecode_Mismatch(t *testing.T) {
	tests := []struct {
		name string
		log  types.Log
	}{
		{
			name: "different topic0",
			log: types.Log{Topics: []common.Hash{
				crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)")),
				addressTopic(aliceAddr),
				addressTopic(bobAddr),
			}},
		},
		{name: "no topics", log: types.Log{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Decode(ownershipTransferred, tt.log)
			require.Error(t, err)
			assert.Nil(t, ev)
			assert.ErrorIs(t, err, cerrors.ErrEventMismatch)
			assert.True(t, cerrors.IsCode(err, cerrors.ErrCodeEventMismatch))
		})
	}
}

func TestDecode_WrongTopicCount(t *testing.T) {
	l := ownershipLog(aliceAddr, bobAddr, 1, 0)
	l.Topics = l.Topics[:2]

	_, err := Decode(ownershipTransferred, l)
	require.Error(t, err)
	assert.ErrorIs(t, err, cerrors.ErrLengthMismatch)
}

func TestDecode_IndexedDynamicIsOpaque(t *testing.T) {
	data, err := abi.Encode([]abi.Type{abi.Address, abi.String}, []any{bobAddr, "front row"})
	require.NoError(t, err)

	nameDigest := crypto.Keccak256Hash([]byte("Roskilde 2026"))
	l := types.Log{
		Address: contractAddr,
		Topics: []common.Hash{
			ticketRegistered.Topic0(),
			nameDigest,
			common.BigToHash(big.NewInt(42)),
		},
		Data: data,
	}

	ev, err := Decode(ticketRegistered, l)
	require.NoError(t, err)

	opaque, ok := ev.Values["eventName"].(Opaque)
	require.True(t, ok, "indexed string must be an Opaque marker")
	assert.Equal(t, nameDigest, opaque.Digest)
	assert.True(t, opaque.Matches([]byte("Roskilde 2026")))
	assert.False(t, opaque.Matches([]byte("Roskilde 2025")))

	assert.Equal(t, 0, big.NewInt(42).Cmp(ev.Values["ticketId"].(*big.Int)))
	assert.Equal(t, bobAddr, ev.Values["holder"])
	assert.Equal(t, "front row", ev.Values["note"])
	assert.Len(t, ev.Ordered, 4)
}

func TestDecode_BadData(t *testing.T) {
	l := types.Log{
		Topics: []common.Hash{ticketRegistered.Topic0(), {}, {}},
		Data:   common.LeftPadBytes([]byte{0x40}, 32),
	}
	_, err := Decode(ticketRegistered, l)
	require.Error(t, err)
	assert.True(t, cerrors.IsCode(err, cerrors.ErrCodeDecode))
}

func TestDecode_Anonymous(t *testing.T) {
	sig := abi.EventSignature{
		Name:      "Ping",
		Anonymous: true,
		Inputs: []abi.EventParam{
			{Param: abi.Param{Type: abi.Address}, Indexed: true},
			{Param: abi.Param{Type: abi.Bool}},
		},
	}
	data, err := abi.Encode([]abi.Type{abi.Bool}, []any{true})
	require.NoError(t, err)

	ev, err := Decode(sig, types.Log{Topics: []common.Hash{addressTopic(aliceAddr)}, Data: data})
	require.NoError(t, err)
	assert.Equal(t, aliceAddr, ev.Values["arg0"])
	assert.Equal(t, true, ev.Values["arg1"])
}

func TestDecodeAll_SkipsOtherEvents(t *testing.T) {
	first := ownershipLog(common.Address{}, aliceAddr, 1, 0)
	second := ownershipLog(aliceAddr, bobAddr, 1, 2)
	foreign := types.Log{Topics: []common.Hash{crypto.Keccak256Hash([]byte("Other()"))}, Index: 1}

	events, err := DecodeAll(ownershipTransferred, []*types.Log{&first, &foreign, nil, &second})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, aliceAddr, events[0].Values["newOwner"])
	assert.Equal(t, bobAddr, events[1].Values["newOwner"])

	broken := ownershipLog(aliceAddr, bobAddr, 1, 3)
	broken.Topics = broken.Topics[:1]
	_, err = DecodeAll(ownershipTransferred, []*types.Log{&broken})
	assert.ErrorIs(t, err, cerrors.ErrLengthMismatch)
}

func TestTopics(t *testing.T) {
	topics, err := Topics(abi.Address, aliceAddr, bobAddr)
	require.NoError(t, err)
	assert.Equal(t, []common.Hash{addressTopic(aliceAddr), addressTopic(bobAddr)}, topics)

	topics, err = Topics(abi.String, "Roskilde 2026")
	require.NoError(t, err)
	assert.Equal(t, crypto.Keccak256Hash([]byte("Roskilde 2026")), topics[0])

	topics, err = Topics(abi.Uint256, big.NewInt(42))
	require.NoError(t, err)
	assert.Equal(t, common.BigToHash(big.NewInt(42)), topics[0])

	payload := []byte("ticket-7")
	for _, v := range []any{payload, hexutil.Bytes(payload)} {
		topics, err = Topics(abi.Bytes, v)
		require.NoError(t, err)
		assert.Equal(t, crypto.Keccak256Hash(payload), topics[0])
	}

	_, err = Topics(abi.Bytes, 42)
	assert.True(t, cerrors.IsCode(err, cerrors.ErrCodeEncode))

	_, err = Topics(abi.ArrayOf(abi.Uint256), []any{1})
	assert.True(t, cerrors.IsCode(err, cerrors.ErrCodeEncode))

	_, err = Topics(abi.Address, "not an address")
	assert.True(t, cerrors.IsCode(err, cerrors.ErrCodeEncode))
}
