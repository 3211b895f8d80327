package register

// ContractName keys RegisterContract deployments in address books.
const ContractName = "RegisterContract"

// ABI is the interface description of RegisterContract.
const ABI = `[
  {"inputs":[],"stateMutability":"nonpayable","type":"constructor"},
  {"inputs":[{"internalType":"address","name":"owner","type":"address"}],"name":"OwnableInvalidOwner","type":"error"},
  {"inputs":[{"internalType":"address","name":"account","type":"address"}],"name":"OwnableUnauthorizedAccount","type":"error"},
  {"anonymous":false,"inputs":[
    {"indexed":true,"internalType":"address","name":"previousOwner","type":"address"},
    {"indexed":true,"internalType":"address","name":"newOwner","type":"address"}
  ],"name":"OwnershipTransferred","type":"event"},
  {"inputs":[],"name":"owner","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"},
  {"inputs":[
    {"internalType":"uint256","name":"_eventId","type":"uint256"},
    {"internalType":"uint256","name":"_ticketId","type":"uint256"},
    {"internalType":"bytes32","name":"_hashedMessage","type":"bytes32"},
    {"internalType":"bytes32","name":"_r","type":"bytes32"},
    {"internalType":"bytes32","name":"_s","type":"bytes32"},
    {"internalType":"uint8","name":"_v","type":"uint8"}
  ],"name":"registerTicket","outputs":[],"stateMutability":"nonpayable","type":"function"},
  {"inputs":[],"name":"renounceOwnership","outputs":[],"stateMutability":"nonpayable","type":"function"},
  {"inputs":[{"internalType":"address","name":"_ticketAddress","type":"address"}],"name":"setTicketContractAddress","outputs":[],"stateMutability":"nonpayable","type":"function"},
  {"inputs":[{"internalType":"address","name":"newOwner","type":"address"}],"name":"transferOwnership","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

// Bin is the creation bytecode of RegisterContract.
const Bin = "0x608060405234801561000f575f80fd5b50335f73ffffffffffffffffffffffffffffffffffffffff168173ffffffffffffffffffffffffffffffffffffffff1603610081575f6040517f1e4fbdf70000000000000000000000000000000000000000000000000000000081526004016100789190610196565b60405180910390fd5b6100908161009660201b60201c565b506101af565b5f805f9054906101000a900473ffffffffffffffffffffffffffffffffffffffff169050815f806101000a81548173ffffffffffffffffffffffffffffffffffffffff021916908373ffffffffffffffffffffffffffffffffffffffff1602179055508173ffffffffffffffffffffffffffffffffffffffff168173ffffffffffffffffffffffffffffffffffffffff167f8be0079c531659141344cd1fd0a4f28419497f9722a3daafe3b4186f6b6457e060405160405180910390a35050565b5f73ffffffffffffffffffffffffffffffffffffffff82169050919050565b5f61018082610157565b9050919050565b61019081610176565b82525050565b5f6020820190506101a95f830184610187565b92915050565b610a86806101bc5f395ff3fe608060405234801561000f575f80fd5b5060043610610055575f3560e01c8063715018a6146100595780638da5cb5b1461006357806392826b4814610081578063bd9f5d501461009d578063f2fde38b146100b9575b5f80fd5b6100616100d5565b005b61006b6100e8565b604051610078919061057d565b60405180910390f35b61009b600480360381019061009691906105d1565b61010f565b005b6100b760048036038101906100b29190610698565b61015a565b005b6100d360048036038101906100ce91906105d1565b610313565b005b6100dd610397565b6100e65f61041e565b565b5f805f9054906101000a900473ffffffffffffffffffffffffffffffffffffffff16905090565b610117610397565b8060015f6101000a81548173ffffffffffffffffffffffffffffffffffffffff021916908373ffffffffffffffffffffffffffffffffffffffff16021790555050565b5f60015f9054906101000a900473ffffffffffffffffffffffffffffffffffffffff1673ffffffffffffffffffffffffffffffffffffffff1663a08c0bba336040518263ffffffff1660e01b81526004016101b5919061057d565b5f60405180830381865afa1580156101cf573d5f803e3d5ffd5b505050506040513d5f823e3d601f19601f820116820180604052508101906101f79190610877565b9050610238816040518060400160405280600981526020017f4f7267616e697a657200000000000000000000000000000000000000000000008152506104df565b610277576040517f08c379a000000000000000000000000000000000000000000000000000000000815260040161026e9061093e565b60405180910390fd5b60015f9054906101000a900473ffffffffffffffffffffffffffffffffffffffff1673ffffffffffffffffffffffffffffffffffffffff1663e0bcf066888888888888336040518863ffffffff1660e01b81526004016102dd9796959493929190610989565b5f604051808303815f87803b1580156102f4575f80fd5b505af1158015610306573d5f803e3d5ffd5b5050505050505050505050565b61031b610397565b5f73ffffffffffffffffffffffffffffffffffffffff168173ffffffffffffffffffffffffffffffffffffffff160361038b575f6040517f1e4fbdf7000000000000000000000000000000000000000000000000000000008152600401610382919061057d565b60405180910390fd5b6103948161041e565b50565b61039f610537565b73ffffffffffffffffffffffffffffffffffffffff166103bd6100e8565b73ffffffffffffffffffffffffffffffffffffffff161461041c576103e0610537565b6040517f118cdaa7000000000000000000000000000000000000000000000000000000008152600401610413919061057d565b60405180910390fd5b565b5f805f9054906101000a900473ffffffffffffffffffffffffffffffffffffffff169050815f806101000a81548173ffffffffffffffffffffffffffffffffffffffff021916908373ffffffffffffffffffffffffffffffffffffffff1602179055508173ffffffffffffffffffffffffffffffffffffffff168173ffffffffffffffffffffffffffffffffffffffff167f8be0079c531659141344cd1fd0a4f28419497f9722a3daafe3b4186f6b6457e060405160405180910390a35050565b5f816040516020016104f19190610a3a565b60405160208183030381529060405280519060200120836040516020016105189190610a3a565b6040516020818303038152906040528051906020012014905092915050565b5f33905090565b5f73ffffffffffffffffffffffffffffffffffffffff82169050919050565b5f6105678261053e565b9050919050565b6105778161055d565b82525050565b5f6020820190506105905f83018461056e565b92915050565b5f604051905090565b5f80fd5b5f80fd5b6105b08161055d565b81146105ba575f80fd5b50565b5f813590506105cb816105a7565b92915050565b5f602082840312156105e6576105e561059f565b5b5f6105f3848285016105bd565b91505092915050565b5f819050919050565b61060e816105fc565b8114610618575f80fd5b50565b5f8135905061062981610605565b92915050565b5f819050919050565b6106418161062f565b811461064b575f80fd5b50565b5f8135905061065c81610638565b92915050565b5f60ff82169050919050565b61067781610662565b8114610681575f80fd5b50565b5f813590506106928161066e565b92915050565b5f805f805f8060c087890312156106b2576106b161059f565b5b5f6106bf89828a0161061b565b96505060206106d089828a0161061b565b95505060406106e189828a0161064e565b94505060606106f289828a0161064e565b935050608061070389828a0161064e565b92505060a061071489828a01610684565b9150509295509295509295565b5f80fd5b5f80fd5b5f601f19601f8301169050919050565b7f4e487b71000000000000000000000000000000000000000000000000000000005f52604160045260245ffd5b61076f82610729565b810181811067ffffffffffffffff8211171561078e5761078d610739565b5b80604052505050565b5f6107a0610596565b90506107ac8282610766565b919050565b5f67ffffffffffffffff8211156107cb576107ca610739565b5b6107d482610729565b9050602081019050919050565b5f5b838110156107fe5780820151818401526020810190506107e3565b5f8484015250505050565b5f61081b610816846107b1565b610797565b90508281526020810184848401111561083757610836610725565b5b6108428482856107e1565b509392505050565b5f82601f83011261085e5761085d610721565b5b815161086e848260208601610809565b91505092915050565b5f6020828403121561088c5761088b61059f565b5b5f82015167ffffffffffffffff8111156108a9576108a86105a3565b5b6108b58482850161084a565b91505092915050565b5f82825260208201905092915050565b7f4f6e6c79206f7267616e697a6572732063616e2063616c6c20746869732066755f8201527f6e6374696f6e2100000000000000000000000000000000000000000000000000602082015250565b5f6109286027836108be565b9150610933826108ce565b604082019050919050565b5f6020820190508181035f8301526109558161091c565b9050919050565b610965816105fc565b82525050565b6109748161062f565b82525050565b61098381610662565b82525050565b5f60e08201905061099c5f83018a61095c565b6109a9602083018961095c565b6109b6604083018861096b565b6109c3606083018761096b565b6109d0608083018661096b565b6109dd60a083018561097a565b6109ea60c083018461056e565b98975050505050505050565b5f81519050919050565b5f81905092915050565b5f610a14826109f6565b610a1e8185610a00565b9350610a2e8185602086016107e1565b80840191505092915050565b5f610a458284610a0a565b91508190509291505056fea264697066735822122041d825c3f49b63aac56039e1e8fb4dae75383117717cd5efb2c258491e0a958864736f6c63430008140033"
