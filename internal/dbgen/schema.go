package dbgen

import (
	"github.com/apache/arrow-go/v18/arrow"
)

func i64(name string) arrow.Field {
	return arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Int64}
}

func f64(name string) arrow.Field {
	return arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float64}
}

func utf8(name string) arrow.Field {
	return arrow.Field{Name: name, Type: arrow.BinaryTypes.String}
}

var schemas = map[Table]*arrow.Schema{
	TableLineitem: arrow.NewSchema([]arrow.Field{
		i64("l_orderkey"), i64("l_partkey"), i64("l_suppkey"), i64("l_linenumber"),
		f64("l_quantity"), f64("l_extendedprice"), f64("l_discount"), f64("l_tax"),
		utf8("l_returnflag"), utf8("l_linestatus"),
		utf8("l_commitdate"), utf8("l_shipdate"), utf8("l_receiptdate"),
		utf8("l_shipinstruct"), utf8("l_shipmode"), utf8("l_comment"),
	}, nil),
	TableOrders: arrow.NewSchema([]arrow.Field{
		i64("o_orderkey"), i64("o_custkey"), utf8("o_orderstatus"),
		f64("o_totalprice"), utf8("o_orderdate"), utf8("o_orderpriority"),
		utf8("o_clerk"), i64("o_shippriority"), utf8("o_comment"),
	}, nil),
	TableCustomer: arrow.NewSchema([]arrow.Field{
		i64("c_custkey"), utf8("c_name"), utf8("c_address"), i64("c_nationkey"),
		utf8("c_phone"), f64("c_acctbal"), utf8("c_mktsegment"), utf8("c_comment"),
	}, nil),
	TablePart: arrow.NewSchema([]arrow.Field{
		i64("p_partkey"), utf8("p_name"), utf8("p_mfgr"), utf8("p_brand"),
		utf8("p_type"), i64("p_size"), utf8("p_container"),
		f64("p_retailprice"), utf8("p_comment"),
	}, nil),
	TablePartSupp: arrow.NewSchema([]arrow.Field{
		i64("ps_partkey"), i64("ps_suppkey"), i64("ps_availqty"),
		f64("ps_supplycost"), utf8("ps_comment"),
	}, nil),
	TableSupplier: arrow.NewSchema([]arrow.Field{
		i64("s_suppkey"), utf8("s_name"), utf8("s_address"), i64("s_nationkey"),
		utf8("s_phone"), f64("s_acctbal"), utf8("s_comment"),
	}, nil),
	TableNation: arrow.NewSchema([]arrow.Field{
		i64("n_nationkey"), utf8("n_name"), i64("n_regionkey"), utf8("n_comment"),
	}, nil),
	TableRegion: arrow.NewSchema([]arrow.Field{
		i64("r_regionkey"), utf8("r_name"), utf8("r_comment"),
	}, nil),
}

// Schema returns the Arrow schema for a table. Field order matches the
// order converters emit columns in.
func Schema(t Table) *arrow.Schema {
	return schemas[t]
}
